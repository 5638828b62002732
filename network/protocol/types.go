package protocol

// BlockPos is an absolute block coordinate.
type BlockPos struct {
	X, Y, Z int32
}

// Hand selects the main or off hand.
type Hand int32

const (
	MainHand Hand = 0
	OffHand  Hand = 1
)

// Face is the side of a block a player targets.
type Face int8

const (
	FaceBottom Face = iota
	FaceTop
	FaceNorth
	FaceSouth
	FaceWest
	FaceEast
)

// DiggingStatus values of PlayerDigging.
const (
	DigStarted   int32 = 0
	DigCancelled int32 = 1
	DigFinished  int32 = 2
	DropItemAll  int32 = 3
	DropItemOne  int32 = 4
	ShootArrow   int32 = 5
	SwapItemHand int32 = 6
)

// EntityAction ids.
const (
	ActionStartSneaking   int32 = 0
	ActionStopSneaking    int32 = 1
	ActionLeaveBed        int32 = 2
	ActionStartSprinting  int32 = 3
	ActionStopSprinting   int32 = 4
	ActionStartHorseJump  int32 = 5
	ActionStopHorseJump   int32 = 6
	ActionOpenHorseWindow int32 = 7
	ActionStartElytra     int32 = 8
)

// InteractEntity types.
const (
	InteractUse    int32 = 0
	InteractAttack int32 = 1
	InteractUseAt  int32 = 2
)
