// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import "fmt"

// EventBlock holds the event sheets of a game: the sheet names, and one
// top-level event list per layout.
type EventBlock struct {
	SheetNames   []string
	LayoutSheets [][]EventNode
}

// EventNode is an entry of an event list. It is implemented by *Event,
// *EventGroup and *EventInclude.
type EventNode interface {
	eventNode()
}

// Event is a set of conditions, the actions run when they hold, and nested
// sub-events.
type Event struct {
	Line       int32
	SheetID    int32
	Conditions []EventCondition
	Actions    []EventAction
	Events     []EventNode
}

// EventGroup is a named, toggleable list of events.
type EventGroup struct {
	Active bool
	Name   string
	Events []EventNode
}

// EventInclude pulls the top-level events of another sheet (an index into
// EventBlock.LayoutSheets) into the list it appears in. Includes have no
// wire form: the encoder inlines them, so decoding never produces one.
type EventInclude struct {
	Sheet int32
}

func (*Event) eventNode()        {}
func (*EventGroup) eventNode()   {}
func (*EventInclude) eventNode() {}

// EventCondition is one condition of an event. Params holds one token list
// per formal parameter.
type EventCondition struct {
	ObjectID    int32
	ConditionID int32
	Negated     bool
	MovementID  int32
	Params      [][]Token
}

// EventAction is one action of an event.
type EventAction struct {
	ObjectID   int32
	ActionID   int32
	MovementID int32
	Params     [][]Token
}

// DecodeEventBlock decodes an event block.
func DecodeEventBlock(data []byte) (*EventBlock, error) {
	r := NewReader(data)
	r.enter("eventblock", -1)
	b := &EventBlock{}
	b.SheetNames = ReadCollection(r, "sheet_names", (*Reader).ReadString)
	n := r.ReadI32()
	if r.err == nil && n < 0 {
		r.pos -= 4
		r.fail(ErrCorruptData, "negative layout count %d", n)
	}
	if r.err == nil {
		b.LayoutSheets = readItems(r, "layouts", int64(n), readEventSheet)
	}
	if err := r.Finish(); err != nil {
		return nil, err
	}
	return b, nil
}

// EncodeEventBlock encodes an event block. Includes are expanded in place;
// an include that names a missing sheet or leads back to itself is an
// error.
func EncodeEventBlock(b *EventBlock) ([]byte, error) {
	w := NewWriter(4096)
	WriteCollection(w, b.SheetNames, (*Writer).WriteString)
	w.WriteI32(int32(len(b.LayoutSheets)))
	enc := eventEncoder{w: w, sheets: b.LayoutSheets}
	for i, sheet := range b.LayoutSheets {
		w.writeSentinel(CapBeginEventList)
		if err := enc.writeNodes(sheet, int32(i)); err != nil {
			return nil, fmt.Errorf("encode layout sheet %d: %w", i, err)
		}
		w.writeSentinel(CapEndEventList)
	}
	return w.Bytes(), nil
}

func (b *EventBlock) Kind() BlockKind { return EventBlockKind }

func (b *EventBlock) MarshalBinary() ([]byte, error) {
	return EncodeEventBlock(b)
}

func (b *EventBlock) UnmarshalBinary(data []byte) error {
	dec, err := DecodeEventBlock(data)
	if err != nil {
		return err
	}
	*b = *dec
	return nil
}

// Walk visits nodes depth first in wire order, descending into events and
// groups. It stops early when fn returns false.
func Walk(nodes []EventNode, fn func(EventNode) bool) bool {
	stack := [][]EventNode{nodes}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if len(*top) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		n := (*top)[0]
		*top = (*top)[1:]
		if !fn(n) {
			return false
		}
		switch v := n.(type) {
		case *Event:
			stack = append(stack, v.Events)
		case *EventGroup:
			stack = append(stack, v.Events)
		}
	}
	return true
}

func readEventSheet(r *Reader) []EventNode {
	r.expect(CapBeginEventList)
	nodes := readNodes(r, CapEndEventList)
	r.expect(CapEndEventList)
	return nodes
}

// nodeList is an event list still being read: the slice it fills and the
// sentinel that closes it.
type nodeList struct {
	nodes *[]EventNode
	end   Sentinel
	next  int
}

// readNodes reads events and groups until the closing sentinel, which is
// left for the caller to consume. One byte of lookahead decides the kind.
// Nesting is tracked on an explicit stack, so depth is bounded by the input
// alone.
func readNodes(r *Reader, end Sentinel) []EventNode {
	depth := len(r.path)
	defer func() { r.path = r.path[:depth] }()

	var top []EventNode
	stack := []nodeList{{nodes: &top, end: end}}
	for r.err == nil {
		l := &stack[len(stack)-1]
		if r.at(l.end) {
			if len(stack) == 1 {
				break
			}
			r.expect(l.end)
			stack = stack[:len(stack)-1]
			r.leave()
			continue
		}
		if r.err != nil {
			break
		}

		r.enter("events", l.next)
		l.next++
		switch s := Sentinel(r.PeekU8()); s {
		case CapBeginEvent:
			e := readEventHeader(r)
			*l.nodes = append(*l.nodes, e)
			stack = append(stack, nodeList{nodes: &e.Events, end: CapEndEvent})
		case CapBeginGroup:
			g := readGroupHeader(r)
			*l.nodes = append(*l.nodes, g)
			stack = append(stack, nodeList{nodes: &g.Events, end: CapEndGroup})
		default:
			r.fail(ErrUnknownTag, "expected %v, %v or %v, found 0x%02X",
				CapBeginEvent, CapBeginGroup, l.end, uint8(s))
		}
	}
	return top
}

// readEventHeader reads an event up to its sub-events. Sub-events have no
// list sentinels of their own; ENDEVENT closes them.
func readEventHeader(r *Reader) *Event {
	e := &Event{}
	r.expect(CapBeginEvent)
	e.Line = r.ReadI32()
	e.SheetID = r.ReadI32()

	r.expect(CapBeginConditions)
	for i := 0; !r.at(CapEndConditions) && r.err == nil; i++ {
		r.enter("conditions", i)
		e.Conditions = append(e.Conditions, readCondition(r))
		r.leave()
	}
	r.expect(CapEndConditions)

	r.expect(CapBeginActions)
	for i := 0; !r.at(CapEndActions) && r.err == nil; i++ {
		r.enter("actions", i)
		e.Actions = append(e.Actions, readAction(r))
		r.leave()
	}
	r.expect(CapEndActions)
	return e
}

func readGroupHeader(r *Reader) *EventGroup {
	g := &EventGroup{}
	r.expect(CapBeginGroup)
	g.Active = r.ReadBool()
	g.Name = r.ReadString()
	return g
}

func readCondition(r *Reader) EventCondition {
	c := EventCondition{}
	r.expect(CapBeginCondition)
	c.ObjectID = r.ReadI32()
	c.ConditionID = r.ReadI32()
	c.Negated = r.ReadBool()
	c.MovementID = r.ReadI32()
	c.Params = ReadCollection(r, "params", readParam)
	r.expect(CapEndCondition)
	return c
}

func readAction(r *Reader) EventAction {
	a := EventAction{}
	r.expect(CapBeginAction)
	a.ObjectID = r.ReadI32()
	a.ActionID = r.ReadI32()
	a.MovementID = r.ReadI32()
	a.Params = ReadCollection(r, "params", readParam)
	r.expect(CapEndAction)
	return a
}

// eventEncoder writes event lists, expanding includes against sheets.
type eventEncoder struct {
	w      *Writer
	sheets [][]EventNode
}

// pendingList is an event list still being written. end is written once
// nodes is exhausted; included sheets have no sentinel of their own.
type pendingList struct {
	nodes []EventNode
	end   Sentinel
	owner EventNode // *Event or *EventGroup, nil for sheets
	sheet int32     // sheet being expanded, or -1
}

// writeNodes writes the nodes of sheet without surrounding sentinels.
// Includes are expanded in place; the sheets on the stack reject cycles.
func (e *eventEncoder) writeNodes(nodes []EventNode, sheet int32) error {
	w := e.w
	stack := []pendingList{{nodes: nodes, sheet: sheet}}
	for len(stack) > 0 {
		l := &stack[len(stack)-1]
		if len(l.nodes) == 0 {
			if l.end != 0 {
				w.writeSentinel(l.end)
			}
			stack = stack[:len(stack)-1]
			continue
		}
		n := l.nodes[0]
		l.nodes = l.nodes[1:]

		switch v := n.(type) {
		case *Event:
			if v == nil {
				return wrapOwner(stack, fmt.Errorf("%w: nil event", ErrInvalidValue))
			}
			if err := writeEventHeader(w, v); err != nil {
				return wrapOwner(stack, fmt.Errorf("event at line %d: %w", v.Line, err))
			}
			stack = append(stack, pendingList{nodes: v.Events, end: CapEndEvent, owner: v, sheet: -1})
		case *EventGroup:
			if v == nil {
				return wrapOwner(stack, fmt.Errorf("%w: nil group", ErrInvalidValue))
			}
			w.writeSentinel(CapBeginGroup)
			w.WriteBool(v.Active)
			w.WriteString(v.Name)
			stack = append(stack, pendingList{nodes: v.Events, end: CapEndGroup, owner: v, sheet: -1})
		case *EventInclude:
			if v == nil {
				return wrapOwner(stack, fmt.Errorf("%w: nil include", ErrInvalidValue))
			}
			if v.Sheet < 0 || int(v.Sheet) >= len(e.sheets) {
				return wrapOwner(stack, fmt.Errorf("include of sheet %d: %w: only %d sheets", v.Sheet, ErrUnknownTag, len(e.sheets)))
			}
			var expanding []int32
			for _, p := range stack {
				if p.sheet >= 0 {
					expanding = append(expanding, p.sheet)
				}
			}
			for _, s := range expanding {
				if s == v.Sheet {
					return wrapOwner(stack, fmt.Errorf("include of sheet %d: cycle through %v", v.Sheet, expanding))
				}
			}
			stack = append(stack, pendingList{nodes: e.sheets[v.Sheet], sheet: v.Sheet})
		case nil:
			return wrapOwner(stack, fmt.Errorf("%w: nil event node", ErrInvalidValue))
		default:
			return wrapOwner(stack, fmt.Errorf("%w: event node %T", ErrUnknownTag, n))
		}
	}
	return nil
}

// wrapOwner names the innermost event or group being written in err.
func wrapOwner(stack []pendingList, err error) error {
	for i := len(stack) - 1; i >= 0; i-- {
		switch v := stack[i].owner.(type) {
		case *Event:
			return fmt.Errorf("event at line %d: %w", v.Line, err)
		case *EventGroup:
			return fmt.Errorf("group %q: %w", v.Name, err)
		}
	}
	return err
}

func writeEventHeader(w *Writer, ev *Event) error {
	w.writeSentinel(CapBeginEvent)
	w.WriteI32(ev.Line)
	w.WriteI32(ev.SheetID)

	w.writeSentinel(CapBeginConditions)
	for i, c := range ev.Conditions {
		if err := writeCondition(w, c); err != nil {
			return fmt.Errorf("conditions[%d]: %w", i, err)
		}
	}
	w.writeSentinel(CapEndConditions)

	w.writeSentinel(CapBeginActions)
	for i, a := range ev.Actions {
		if err := writeAction(w, a); err != nil {
			return fmt.Errorf("actions[%d]: %w", i, err)
		}
	}
	w.writeSentinel(CapEndActions)
	return nil
}

func writeCondition(w *Writer, c EventCondition) error {
	w.writeSentinel(CapBeginCondition)
	w.WriteI32(c.ObjectID)
	w.WriteI32(c.ConditionID)
	w.WriteBool(c.Negated)
	w.WriteI32(c.MovementID)
	if err := writeParams(w, c.Params); err != nil {
		return err
	}
	w.writeSentinel(CapEndCondition)
	return nil
}

func writeAction(w *Writer, a EventAction) error {
	w.writeSentinel(CapBeginAction)
	w.WriteI32(a.ObjectID)
	w.WriteI32(a.ActionID)
	w.WriteI32(a.MovementID)
	if err := writeParams(w, a.Params); err != nil {
		return err
	}
	w.writeSentinel(CapEndAction)
	return nil
}
