// Package opcode defines the closed set of world-server opcodes this
// client understands, in both directions.
package opcode

// Opcode is a human name paired with the 16-bit numeric identifier carried
// on the wire. Direction is part of the name (SMSG_* / CMSG_*); the
// numeric spaces overlap between directions but are never ambiguous in
// context, since inbound frames only ever carry SMSG codes and outbound
// headers only ever carry CMSG codes.
type Opcode struct {
	Name string
	ID   uint32
}

func (o Opcode) String() string { return o.Name }

// Direction reports whether an opcode is server-originated or client-originated.
type Direction int

const (
	DirServerToClient Direction = iota
	DirClientToServer
)

var (
	// Inbound (SMSG) opcodes — see spec §6.
	SMSG_ACTION_BUTTONS           = Opcode{"SMSG_ACTION_BUTTONS", 0x0129}
	SMSG_SET_PROFICIENCY          = Opcode{"SMSG_SET_PROFICIENCY", 0x0127}
	SMSG_BINDPOINTUPDATE          = Opcode{"SMSG_BINDPOINTUPDATE", 0x0155}
	SMSG_INITIALIZE_FACTIONS      = Opcode{"SMSG_INITIALIZE_FACTIONS", 0x0244}
	SMSG_TUTORIAL_FLAGS           = Opcode{"SMSG_TUTORIAL_FLAGS", 0x00FD}
	SMSG_SHOWTAXINODES            = Opcode{"SMSG_SHOWTAXINODES", 0x0193}
	SMSG_ACTIVATETAXIREPLY        = Opcode{"SMSG_ACTIVATETAXIREPLY", 0x0284}
	SMSG_TAXINODE_STATUS          = Opcode{"SMSG_TAXINODE_STATUS", 0x0312}
	SMSG_INVENTORY_CHANGE_FAILURE = Opcode{"SMSG_INVENTORY_CHANGE_FAILURE", 0x0112}
	SMSG_FRIEND_LIST              = Opcode{"SMSG_FRIEND_LIST", 0x0067}
	SMSG_FRIEND_STATUS            = Opcode{"SMSG_FRIEND_STATUS", 0x0068}
	SMSG_LIST_INVENTORY           = Opcode{"SMSG_LIST_INVENTORY", 0x01A3}
	SMSG_GOSSIP_COMPLETE          = Opcode{"SMSG_GOSSIP_COMPLETE", 0x018E}
	SMSG_IGNORE_LIST              = Opcode{"SMSG_IGNORE_LIST", 0x006E}
	SMSG_TRAINER_LIST             = Opcode{"SMSG_TRAINER_LIST", 0x01B1}
	SMSG_TRAINER_BUY_SUCCEEDED    = Opcode{"SMSG_TRAINER_BUY_SUCCEEDED", 0x01B3}
	SMSG_TRAINER_BUY_FAILED       = Opcode{"SMSG_TRAINER_BUY_FAILED", 0x01B4}

	// Outbound (CMSG) opcodes — see spec §6.
	CMSG_SET_SELECTION           = Opcode{"CMSG_SET_SELECTION", 0x013D}
	CMSG_GOSSIP_HELLO            = Opcode{"CMSG_GOSSIP_HELLO", 0x017D}
	CMSG_SWAP_ITEM               = Opcode{"CMSG_SWAP_ITEM", 0x010C}
	CMSG_SPLIT_ITEM              = Opcode{"CMSG_SPLIT_ITEM", 0x010E}
	CMSG_DESTROYITEM             = Opcode{"CMSG_DESTROYITEM", 0x0111}
	CMSG_AUTOSTORE_BAG_ITEM      = Opcode{"CMSG_AUTOSTORE_BAG_ITEM", 0x010A}
	CMSG_BUY_ITEM                = Opcode{"CMSG_BUY_ITEM", 0x01A6}
	CMSG_BUY_ITEM_IN_SLOT        = Opcode{"CMSG_BUY_ITEM_IN_SLOT", 0x01A7}
	CMSG_SELL_ITEM               = Opcode{"CMSG_SELL_ITEM", 0x01A4}
	CMSG_REPAIR_ITEM             = Opcode{"CMSG_REPAIR_ITEM", 0x02A7}
	CMSG_LIST_INVENTORY          = Opcode{"CMSG_LIST_INVENTORY", 0x01A2}
	CMSG_ADD_FRIEND              = Opcode{"CMSG_ADD_FRIEND", 0x0069}
	CMSG_DEL_FRIEND              = Opcode{"CMSG_DEL_FRIEND", 0x006A}
	CMSG_ADD_IGNORE              = Opcode{"CMSG_ADD_IGNORE", 0x006B}
	CMSG_DEL_IGNORE              = Opcode{"CMSG_DEL_IGNORE", 0x006C}
	CMSG_FRIEND_LIST             = Opcode{"CMSG_FRIEND_LIST", 0x0066}
	CMSG_EMOTE                   = Opcode{"CMSG_EMOTE", 0x0102}
	CMSG_TEXT_EMOTE              = Opcode{"CMSG_TEXT_EMOTE", 0x0104}
	CMSG_GAMEOBJ_USE             = Opcode{"CMSG_GAMEOBJ_USE", 0x015B}
	CMSG_TAXINODE_STATUS_QUERY   = Opcode{"CMSG_TAXINODE_STATUS_QUERY", 0x0194}
	CMSG_TAXIQUERYAVAILABLENODES = Opcode{"CMSG_TAXIQUERYAVAILABLENODES", 0x0198}
	CMSG_TAXISHOWNODES           = Opcode{"CMSG_TAXISHOWNODES", 0x02C0}
	CMSG_ACTIVATETAXI            = Opcode{"CMSG_ACTIVATETAXI", 0x0199}
	CMSG_ACTIVATETAXIEXPRESS     = Opcode{"CMSG_ACTIVATETAXIEXPRESS", 0x0312}
	CMSG_TAXICLEARNODE           = Opcode{"CMSG_TAXICLEARNODE", 0x0196}
	CMSG_TAXIENABLENODE          = Opcode{"CMSG_TAXIENABLENODE", 0x0197}
	CMSG_TAXICLEARALLNODES       = Opcode{"CMSG_TAXICLEARALLNODES", 0x02C1}
	CMSG_TAXIENABLEALLNODES      = Opcode{"CMSG_TAXIENABLEALLNODES", 0x02C2}
	CMSG_TRAINER_LIST            = Opcode{"CMSG_TRAINER_LIST", 0x01B0}
	CMSG_TRAINER_BUY_SPELL       = Opcode{"CMSG_TRAINER_BUY_SPELL", 0x01B2}
	CMSG_PET_ACTION              = Opcode{"CMSG_PET_ACTION", 0x0287}
)

// smsgByID and cmsgByID back the Codec's numeric-ID lookups (internal/codec).
// Exported as functions rather than maps so the table can't be mutated by callers.

var smsgByID = map[uint32]Opcode{}
var cmsgByID = map[uint32]Opcode{}

func register(table map[uint32]Opcode, ops ...Opcode) {
	for _, op := range ops {
		table[op.ID] = op
	}
}

func init() {
	register(smsgByID,
		SMSG_ACTION_BUTTONS, SMSG_SET_PROFICIENCY, SMSG_BINDPOINTUPDATE,
		SMSG_INITIALIZE_FACTIONS, SMSG_TUTORIAL_FLAGS, SMSG_SHOWTAXINODES,
		SMSG_ACTIVATETAXIREPLY, SMSG_TAXINODE_STATUS, SMSG_INVENTORY_CHANGE_FAILURE,
		SMSG_FRIEND_LIST, SMSG_FRIEND_STATUS, SMSG_LIST_INVENTORY,
		SMSG_GOSSIP_COMPLETE, SMSG_IGNORE_LIST, SMSG_TRAINER_LIST,
		SMSG_TRAINER_BUY_SUCCEEDED, SMSG_TRAINER_BUY_FAILED,
	)
	register(cmsgByID,
		CMSG_SET_SELECTION, CMSG_GOSSIP_HELLO, CMSG_SWAP_ITEM, CMSG_SPLIT_ITEM,
		CMSG_DESTROYITEM, CMSG_AUTOSTORE_BAG_ITEM, CMSG_BUY_ITEM, CMSG_BUY_ITEM_IN_SLOT,
		CMSG_SELL_ITEM, CMSG_REPAIR_ITEM, CMSG_LIST_INVENTORY, CMSG_ADD_FRIEND,
		CMSG_DEL_FRIEND, CMSG_ADD_IGNORE, CMSG_DEL_IGNORE, CMSG_FRIEND_LIST,
		CMSG_EMOTE, CMSG_TEXT_EMOTE, CMSG_GAMEOBJ_USE, CMSG_TAXINODE_STATUS_QUERY,
		CMSG_TAXIQUERYAVAILABLENODES, CMSG_TAXISHOWNODES, CMSG_ACTIVATETAXI,
		CMSG_ACTIVATETAXIEXPRESS, CMSG_TAXICLEARNODE, CMSG_TAXIENABLENODE,
		CMSG_TAXICLEARALLNODES, CMSG_TAXIENABLEALLNODES, CMSG_TRAINER_LIST,
		CMSG_TRAINER_BUY_SPELL, CMSG_PET_ACTION,
	)
}

// LookupSMSG maps a numeric ID read off the wire to its named opcode.
// ok is false for any ID outside the handled set (spec §3 invariant 1:
// such bodies are logged as "unhandled opcode", never parsed or dropped silently).
func LookupSMSG(id uint32) (Opcode, bool) {
	op, ok := smsgByID[id]
	return op, ok
}

// LookupCMSG maps a numeric ID to its named outbound opcode.
func LookupCMSG(id uint32) (Opcode, bool) {
	op, ok := cmsgByID[id]
	return op, ok
}
