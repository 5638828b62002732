// Package metrics defines the metric types, names and dimensions reported by craftnet.
package metrics

// Policy defines how multiple values for the same metric are combined.
type Policy int

const (
	Policy_None Policy = iota // Policy_None lets the reporter pick a default.
	Policy_Set                // Policy_Set keeps the last reported value.
	Policy_Sum                // Policy_Sum accumulates every reported value.
	Policy_Max                // Policy_Max keeps the highest reported value.
)

// Value represents a metric value as a float64.
type Value float64

// Dimension represents metric dimensions as key-value pairs.
type Dimension map[string]string

const (
	// KB represents a kilobyte (1024 bytes).
	KB = 1024.0
)

// Group related constants, prefixed with Group.
const (
	// GroupCraftnet groups process level metrics such as pools.
	GroupCraftnet = "craftnet"
	// GroupNet groups connection and packet metrics.
	GroupNet = "net"
)

// Metric names, prefixed with Name. The comment names the group and dimensions.
const (
	// NamePoolCreateTotal: objects created by a pool because it was empty.
	// group:craftnet dimension:poolname
	NamePoolCreateTotal = "pool_create_total"

	// NameConnOpenTotal: connections that completed Initialize.
	// group:net
	NameConnOpenTotal = "conn_open_total"

	// NameConnCloseTotal: connections torn down.
	// group:net dimension:graceful
	NameConnCloseTotal = "conn_close_total"

	// NamePacketInTotal: packets decoded by the read pump.
	// group:net dimension:phase
	NamePacketInTotal = "packet_in_total"

	// NamePacketOutTotal: packets flushed by the write pump.
	// group:net dimension:phase
	NamePacketOutTotal = "packet_out_total"

	// NameByteInTotal: bytes read from the socket, framing included.
	// group:net
	NameByteInTotal = "byte_in_total"

	// NameByteOutTotal: bytes written to the socket, framing included.
	// group:net
	NameByteOutTotal = "byte_out_total"

	// NameUnhandledPacketTotal: frames whose id has no codec in the current phase.
	// group:net dimension:phase
	NameUnhandledPacketTotal = "unhandled_packet_total"

	// NameSlowHandleTotal: dispatches slower than the slow handling threshold.
	// group:net dimension:phase
	NameSlowHandleTotal = "slow_handle_total"

	// NameSendDroppedTotal: packets dropped because the outbound queue was closed.
	// group:net
	NameSendDroppedTotal = "send_dropped_total"

	// NameQueueDepthMax: highest outbound queue depth observed.
	// group:net
	NameQueueDepthMax = "queue_depth_max"

	// NameLatencyMS: last measured round trip latency in milliseconds.
	// group:net
	NameLatencyMS = "latency_ms"

	// NameByteInRateKB: inbound throughput of the last report window in KB.
	// group:net
	NameByteInRateKB = "byte_in_rate_KB"

	// NameByteOutRateKB: outbound throughput of the last report window in KB.
	// group:net
	NameByteOutRateKB = "byte_out_rate_KB"
)

// Dimension related definitions, prefixed with Dim.
const (
	// DimPoolName is the dimension for pool name.
	DimPoolName = "poolname"
	// DimPhase is the dimension for protocol phase.
	DimPhase = "phase"
	// DimGraceful reports whether a close was locally requested.
	DimGraceful = "graceful"
)
