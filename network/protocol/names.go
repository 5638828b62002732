package protocol

// playClientboundNames covers every clientbound Play id of this version,
// including the many that have no codec here.
var playClientboundNames = map[int32]string{
	0x00: "Spawn Entity",
	0x01: "Spawn Experience Orb",
	0x02: "Spawn Living Entity",
	0x03: "Spawn Painting",
	0x04: "Spawn Player",
	0x05: "Entity Animation",
	0x06: "Statistics",
	0x07: "Acknowledge Player Digging",
	0x08: "Block Break Animation",
	0x09: "Block Entity Data",
	0x0A: "Block Action",
	0x0B: "Block Change",
	0x0C: "Boss Bar",
	0x0D: "Server Difficulty",
	0x0E: "Chat Message",
	0x0F: "Tab-Complete",
	0x10: "Declare Commands",
	0x11: "Window Confirmation",
	0x12: "Close Window",
	0x13: "Window Items",
	0x14: "Window Property",
	0x15: "Set Slot",
	0x16: "Set Cooldown",
	0x17: "Plugin Message",
	0x18: "Named Sound Effect",
	0x19: "Disconnect",
	0x1A: "Entity Status",
	0x1B: "Explosion",
	0x1C: "Unload Chunk",
	0x1D: "Change Game State",
	0x1E: "Open Horse Window",
	0x1F: "Keep Alive",
	0x20: "Chunk Data",
	0x21: "Effect",
	0x22: "Particle",
	0x23: "Update Light",
	0x24: "Join Game",
	0x25: "Map Data",
	0x26: "Trade List",
	0x27: "Entity Position",
	0x28: "Entity Position and Rotation",
	0x29: "Entity Rotation",
	0x2A: "Entity Movement",
	0x2B: "Vehicle Move",
	0x2C: "Open Book",
	0x2D: "Open Window",
	0x2E: "Open Sign Editor",
	0x2F: "Craft Recipe Response",
	0x30: "Player Abilities",
	0x31: "Combat Event",
	0x32: "Player Info",
	0x33: "Face Player",
	0x34: "Player Position And Look",
	0x35: "Unlock Recipes",
	0x36: "Destroy Entities",
	0x37: "Remove Entity Effect",
	0x38: "Resource Pack Send",
	0x39: "Respawn",
	0x3A: "Entity Head Look",
	0x3B: "Multi Block Change",
	0x3C: "Select Advancement Tab",
	0x3D: "World Border",
	0x3E: "Camera",
	0x3F: "Held Item Change",
	0x40: "Update View Position",
	0x41: "Update View Distance",
	0x42: "Spawn Position",
	0x43: "Display Scoreboard",
	0x44: "Entity Metadata",
	0x45: "Attach Entity",
	0x46: "Entity Velocity",
	0x47: "Entity Equipment",
	0x48: "Set Experience",
	0x49: "Update Health",
	0x4A: "Scoreboard Objective",
	0x4B: "Set Passengers",
	0x4C: "Teams",
	0x4D: "Update Score",
	0x4E: "Time Update",
	0x4F: "Title",
	0x50: "Entity Sound Effect",
	0x51: "Sound Effect",
	0x52: "Stop Sound",
	0x53: "Player List Header And Footer",
	0x54: "NBT Query Response",
	0x55: "Collect Item",
	0x56: "Entity Teleport",
	0x57: "Advancements",
	0x58: "Entity Properties",
	0x59: "Entity Effect",
	0x5A: "Declare Recipes",
	0x5B: "Tags",
}
