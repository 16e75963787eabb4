// Package slots defines the static catalog of bookable lesson time slots.
package slots

import (
	"fmt"
	"strings"
)

// TimeSlot is a fixed, named time-of-day interval eligible for scheduling
// a lesson. The ID encodes block and time range (e.g. "M_0510_0520" for a
// morning slot 05:10-05:20) and is the stable join key between the catalog
// and reservation records. Slots never overlap and belong to exactly one
// block.
type TimeSlot struct {
	ID         string `json:"id" yaml:"id"`
	DisplayKey string `json:"display_key" yaml:"display_key"`
	BlockID    string `json:"block_id" yaml:"block_id"`
}

// TimeBlock groups slots for UI disclosure (morning/afternoon/evening).
// Purely organizational; the model supports any number of blocks.
type TimeBlock struct {
	ID           string     `json:"id" yaml:"id"`
	DisplayKey   string     `json:"display_key" yaml:"display_key"`
	TimeRangeKey string     `json:"time_range_key" yaml:"time_range_key"`
	Slots        []TimeSlot `json:"slots" yaml:"slots"`
}

// TranslateFunc resolves a display key to user-facing text. The zero
// behavior (nil func) returns the key itself.
type TranslateFunc func(key string) string

// Catalog holds the ordered, immutable set of time blocks.
type Catalog struct {
	blocks []TimeBlock
	byID   map[string]TimeSlot
}

// NewCatalog builds a catalog from ordered blocks. Duplicate slot ids are
// rejected: the id is the uniqueness key for every reservation record.
func NewCatalog(blocks []TimeBlock) (*Catalog, error) {
	c := &Catalog{
		blocks: blocks,
		byID:   make(map[string]TimeSlot),
	}
	for _, b := range blocks {
		if b.ID == "" {
			return nil, fmt.Errorf("block with empty id")
		}
		for _, s := range b.Slots {
			if s.ID == "" {
				return nil, fmt.Errorf("block %s: slot with empty id", b.ID)
			}
			if s.BlockID != b.ID {
				return nil, fmt.Errorf("slot %s: block_id %q does not match block %q", s.ID, s.BlockID, b.ID)
			}
			if _, dup := c.byID[s.ID]; dup {
				return nil, fmt.Errorf("duplicate slot id %s", s.ID)
			}
			c.byID[s.ID] = s
		}
	}
	return c, nil
}

// Blocks returns the ordered blocks.
func (c *Catalog) Blocks() []TimeBlock {
	return c.blocks
}

// FindSlot returns the slot for id.
func (c *Catalog) FindSlot(id string) (TimeSlot, error) {
	s, ok := c.byID[id]
	if !ok {
		return TimeSlot{}, fmt.Errorf("unknown slot id %q", id)
	}
	return s, nil
}

// HasSlot reports whether id is a known slot.
func (c *Catalog) HasSlot(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// SlotCount returns the total number of slots across all blocks.
func (c *Catalog) SlotCount() int {
	return len(c.byID)
}

// DisplayTextFor resolves the user-facing text for a slot.
func (c *Catalog) DisplayTextFor(slot TimeSlot, translate TranslateFunc) string {
	if translate == nil {
		return slot.DisplayKey
	}
	return translate(slot.DisplayKey)
}

// slotID derives the canonical id from a block prefix and an HHMM range,
// e.g. slotID("M", "0510", "0520") == "M_0510_0520".
func slotID(prefix, start, end string) string {
	return fmt.Sprintf("%s_%s_%s", prefix, start, end)
}

func displayKey(id string) string {
	return "slots." + strings.ToLower(id)
}

// blockSlots builds ten-minute slots for a block from consecutive HHMM
// boundaries.
func blockSlots(blockID, prefix string, bounds []string) []TimeSlot {
	out := make([]TimeSlot, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		id := slotID(prefix, bounds[i], bounds[i+1])
		out = append(out, TimeSlot{
			ID:         id,
			DisplayKey: displayKey(id),
			BlockID:    blockID,
		})
	}
	return out
}

// DefaultCatalog returns the built-in catalog: three blocks of ten-minute
// lesson slots around the morning, afternoon and evening study circles.
func DefaultCatalog() *Catalog {
	blocks := []TimeBlock{
		{
			ID:           "morning",
			DisplayKey:   "blocks.morning",
			TimeRangeKey: "blocks.morning.range",
			Slots: blockSlots("morning", "M",
				[]string{"0510", "0520", "0530", "0540", "0550", "0600", "0610", "0620"}),
		},
		{
			ID:           "afternoon",
			DisplayKey:   "blocks.afternoon",
			TimeRangeKey: "blocks.afternoon.range",
			Slots: blockSlots("afternoon", "A",
				[]string{"1600", "1610", "1620", "1630", "1640", "1650", "1700"}),
		},
		{
			ID:           "evening",
			DisplayKey:   "blocks.evening",
			TimeRangeKey: "blocks.evening.range",
			Slots: blockSlots("evening", "E",
				[]string{"1900", "1910", "1920", "1930", "1940", "1950", "2000", "2010"}),
		},
	}

	c, err := NewCatalog(blocks)
	if err != nil {
		// Built-in data; an error here is a bug in this file.
		panic(err)
	}
	return c
}
