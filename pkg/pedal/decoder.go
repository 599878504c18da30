// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import (
	"strconv"
	"strings"
	"time"
)

// Minimum field counts, tag included
const (
	minBankFields      = 3 // BANK:id:name
	minBankCountFields = 2 // BANK_COUNT:n
	minSlotFields      = 7 // DATA:b:p:name:type:v1:v2
	fullSlotFields     = 10
	minGlobalFields    = 6 // DATAGLO:id:name:type:v1:v2
	minStatusFields    = 2 // OK:x, ERR:x, END:CONFIG, BEGIN:CONFIG
)

// DecodeLine classifies one controller line. It returns false for anything it
// does not recognize, including known tags with too few fields; such lines are
// dropped without error because the controller is a trusted peer.
func DecodeLine(line string) (*Message, bool) {
	if line == "" {
		return nil, false
	}
	fields := strings.Split(line, FieldSeparator)
	msg := &Message{Raw: line, Timestamp: time.Now()}

	switch fields[0] {
	case TagBank:
		if len(fields) < minBankFields {
			return nil, false
		}
		msg.Kind = KindBank
		msg.Index = ParseInt(fields[1])
		msg.Name = fields[2]

	case TagBankCount:
		if len(fields) < minBankCountFields {
			return nil, false
		}
		msg.Kind = KindBankCount
		msg.Index = ParseInt(fields[1])

	case TagSlot:
		if len(fields) < minSlotFields {
			return nil, false
		}
		msg.Kind = KindSlot
		msg.Index = ParseInt(fields[1])
		msg.Position = ParseInt(fields[2])
		msg.Name = fields[3]
		msg.Slot = Slot{
			Name:      fields[3],
			Type:      ParseActionType(fields[4]),
			Value1:    ParseInt(fields[5]),
			Value2:    ParseInt(fields[6]),
			LongPress: NoLongPress,
		}
		if len(fields) >= fullSlotFields {
			msg.Slot.LongPress = LongPress{
				Type:   ParseActionType(fields[7]),
				Value1: ParseInt(fields[8]),
				Value2: ParseInt(fields[9]),
			}
		}

	case TagGlobal:
		if len(fields) < minGlobalFields {
			return nil, false
		}
		msg.Kind = KindGlobal
		msg.Index = ParseInt(fields[1])
		msg.Name = fields[2]
		msg.Global = GlobalSlot{
			Name:   fields[2],
			Type:   ParseActionType(fields[3]),
			Value1: ParseInt(fields[4]),
			Value2: ParseInt(fields[5]),
		}

	case TagBegin, TagEnd:
		if len(fields) < minStatusFields || fields[1] != markerConfig {
			return nil, false
		}
		msg.Kind = KindEndConfig
		if fields[0] == TagBegin {
			msg.Kind = KindBeginConfig
		}

	case TagOK, TagErr:
		if len(fields) < minStatusFields || fields[1] == "" {
			return nil, false
		}
		msg.Kind = KindAck
		if fields[0] == TagErr {
			msg.Kind = KindDeviceError
		}
		msg.Subtype = fields[1]

	case TagReady:
		msg.Kind = KindReady
		if len(fields) > 1 {
			msg.Subtype = strings.Join(fields[1:], FieldSeparator)
		}

	default:
		return nil, false
	}

	return msg, true
}

// ParseInt decodes a numeric wire field. Anything that is not an integer
// decodes to 0.
func ParseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
