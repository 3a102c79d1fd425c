// Package characterinit decodes the handful of SMSG packets the server
// sends once right after character login: action bars, weapon
// proficiencies, the bind point, faction reputation seeds, and the
// tutorial flag bitset (spec §4.9 CharacterInit). Grounded on the
// parser/cache/broadcaster shape shared by every components/* package,
// itself modeled on the teacher's single-purpose decode-then-publish
// handlers.
package characterinit

import (
	"log"
	"sync"

	"github.com/mangosgo/wowcore/internal/component"
	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/stream"
	"github.com/mangosgo/wowcore/internal/wire"
)

const actionButtonCount = 120

// actionTypeSpell is the ActionButton.Type() value meaning "this slot
// casts a spell" (spec §8 scenario 2).
const actionTypeSpell = 1

// ActionButton is one decoded action-bar slot (spec §3 DomainRecord).
type ActionButton struct {
	Packed uint32
}

func (a ActionButton) ActionID() uint32 { return a.Packed & 0x00FFFFFF }
func (a ActionButton) Type() uint8      { return uint8(a.Packed >> 24) }
func (a ActionButton) IsEmpty() bool    { return a.Packed == 0 }

// Proficiency is SMSG_SET_PROFICIENCY decoded.
type Proficiency struct {
	ItemClass    uint8
	SubclassMask uint32
}

// BindPoint is SMSG_BINDPOINTUPDATE decoded.
type BindPoint struct {
	X, Y, Z      float32
	MapID, AreaID uint32
}

// Faction is one entry of SMSG_INITIALIZE_FACTIONS.
type Faction struct {
	Flags    uint8
	Standing int32
}

// Component maintains the character-init snapshots and their update
// streams, per spec §4.9.
type Component struct {
	core *component.Core

	mu            sync.Mutex
	actionButtons [actionButtonCount]ActionButton
	proficiency   Proficiency
	bindPoint     BindPoint
	factions      []Faction
	tutorialFlags [8]uint32

	actionButtonUpdates *stream.Broadcaster[[actionButtonCount]ActionButton]
	proficiencyUpdates  *stream.Broadcaster[Proficiency]
	bindPointUpdates    *stream.Broadcaster[BindPoint]
	factionUpdates      *stream.Broadcaster[[]Faction]
	tutorialFlagUpdates *stream.Broadcaster[[8]uint32]
}

func New(client component.OpcodeSource) *Component {
	c := &Component{
		core:                component.NewCore(),
		actionButtonUpdates: stream.NewBroadcaster[[actionButtonCount]ActionButton](),
		proficiencyUpdates:  stream.NewBroadcaster[Proficiency](),
		bindPointUpdates:    stream.NewBroadcaster[BindPoint](),
		factionUpdates:      stream.NewBroadcaster[[]Faction](),
		tutorialFlagUpdates: stream.NewBroadcaster[[8]uint32](),
	}
	c.core.Subscribe(client, opcode.SMSG_ACTION_BUTTONS, c.parseActionButtons)
	c.core.Subscribe(client, opcode.SMSG_SET_PROFICIENCY, c.parseProficiency)
	c.core.Subscribe(client, opcode.SMSG_BINDPOINTUPDATE, c.parseBindPoint)
	c.core.Subscribe(client, opcode.SMSG_INITIALIZE_FACTIONS, c.parseFactions)
	c.core.Subscribe(client, opcode.SMSG_TUTORIAL_FLAGS, c.parseTutorialFlags)
	return c
}

func (c *Component) parseActionButtons(body []byte) {
	r := wire.NewReader(body)
	var buttons [actionButtonCount]ActionButton
	for i := 0; i < actionButtonCount; i++ {
		packed, err := r.U32()
		if err != nil {
			log.Printf("characterinit: truncated ACTION_BUTTONS, dropping packet")
			return
		}
		buttons[i] = ActionButton{Packed: packed}
	}

	c.mu.Lock()
	c.actionButtons = buttons
	c.mu.Unlock()
	c.actionButtonUpdates.Emit(buttons)
}

// GetSpellForSlot returns the spell id bound to slot, if that slot is
// occupied and bound to a spell-type action (spec §8 scenario 2).
func (c *Component) GetSpellForSlot(slot int) (uint32, bool) {
	if slot < 0 || slot >= actionButtonCount {
		return 0, false
	}
	c.mu.Lock()
	btn := c.actionButtons[slot]
	c.mu.Unlock()

	if btn.IsEmpty() || btn.Type() != actionTypeSpell {
		return 0, false
	}
	return btn.ActionID(), true
}

func (c *Component) ActionButtons() [actionButtonCount]ActionButton {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.actionButtons
}

func (c *Component) parseProficiency(body []byte) {
	r := wire.NewReader(body)
	itemClass, err := r.U8()
	if err != nil {
		log.Printf("characterinit: truncated SET_PROFICIENCY, dropping packet")
		return
	}
	mask, err := r.U32()
	if err != nil {
		log.Printf("characterinit: truncated SET_PROFICIENCY, dropping packet")
		return
	}

	p := Proficiency{ItemClass: itemClass, SubclassMask: mask}
	c.mu.Lock()
	c.proficiency = p
	c.mu.Unlock()
	c.proficiencyUpdates.Emit(p)
}

func (c *Component) Proficiency() Proficiency {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proficiency
}

func (c *Component) parseBindPoint(body []byte) {
	r := wire.NewReader(body)
	x, err1 := r.F32()
	y, err2 := r.F32()
	z, err3 := r.F32()
	mapID, err4 := r.U32()
	areaID, err5 := r.U32()
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		log.Printf("characterinit: truncated BINDPOINTUPDATE, dropping packet")
		return
	}

	bp := BindPoint{X: x, Y: y, Z: z, MapID: mapID, AreaID: areaID}
	c.mu.Lock()
	c.bindPoint = bp
	c.mu.Unlock()
	c.bindPointUpdates.Emit(bp)
}

func (c *Component) BindPoint() BindPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bindPoint
}

func (c *Component) parseFactions(body []byte) {
	r := wire.NewReader(body)
	count, err := r.U32()
	if err != nil {
		log.Printf("characterinit: truncated INITIALIZE_FACTIONS, dropping packet")
		return
	}

	factions := make([]Faction, 0, count)
	for i := uint32(0); i < count; i++ {
		flags, err := r.U8()
		if err != nil {
			log.Printf("characterinit: truncated INITIALIZE_FACTIONS entry %d, dropping packet", i)
			return
		}
		standing, err := r.I32()
		if err != nil {
			log.Printf("characterinit: truncated INITIALIZE_FACTIONS entry %d, dropping packet", i)
			return
		}
		factions = append(factions, Faction{Flags: flags, Standing: standing})
	}

	c.mu.Lock()
	c.factions = factions
	c.mu.Unlock()
	c.factionUpdates.Emit(factions)
}

func (c *Component) Factions() []Faction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Faction(nil), c.factions...)
}

func (c *Component) parseTutorialFlags(body []byte) {
	r := wire.NewReader(body)
	var flags [8]uint32
	for i := range flags {
		v, err := r.U32()
		if err != nil {
			log.Printf("characterinit: truncated TUTORIAL_FLAGS, dropping packet")
			return
		}
		flags[i] = v
	}

	c.mu.Lock()
	c.tutorialFlags = flags
	c.mu.Unlock()
	c.tutorialFlagUpdates.Emit(flags)
}

func (c *Component) TutorialFlags() [8]uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tutorialFlags
}

func (c *Component) ActionButtonUpdates() (<-chan [actionButtonCount]ActionButton, func()) {
	return c.actionButtonUpdates.Subscribe()
}

func (c *Component) ProficiencyUpdates() (<-chan Proficiency, func()) {
	return c.proficiencyUpdates.Subscribe()
}

func (c *Component) BindPointUpdates() (<-chan BindPoint, func()) {
	return c.bindPointUpdates.Subscribe()
}

func (c *Component) FactionUpdates() (<-chan []Faction, func()) {
	return c.factionUpdates.Subscribe()
}

func (c *Component) TutorialFlagUpdates() (<-chan [8]uint32, func()) {
	return c.tutorialFlagUpdates.Subscribe()
}

func (c *Component) Dispose() {
	c.core.Dispose(
		c.actionButtonUpdates.Close,
		c.proficiencyUpdates.Close,
		c.bindPointUpdates.Close,
		c.factionUpdates.Close,
		c.tutorialFlagUpdates.Close,
	)
}
