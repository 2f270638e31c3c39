package h2proto

import "github.com/haberdash/h2proto/wire"

// SettingID identifies a recognized SETTINGS parameter.
type SettingID uint16

const (
	SettingHeaderTableSize      SettingID = 0x1
	SettingEnablePush           SettingID = 0x2
	SettingMaxConcurrentStreams SettingID = 0x3
	SettingInitialWindowSize    SettingID = 0x4
)

var settingNames = map[SettingID]string{
	SettingHeaderTableSize:      "SETTINGS_HEADER_TABLE_SIZE",
	SettingEnablePush:           "SETTINGS_ENABLE_PUSH",
	SettingMaxConcurrentStreams: "SETTINGS_MAX_CONCURRENT_STREAMS",
	SettingInitialWindowSize:    "SETTINGS_INITIAL_WINDOW_SIZE",
}

func (id SettingID) String() string {
	if s, ok := settingNames[id]; ok {
		return s
	}
	return "SETTINGS_UNKNOWN"
}

const FrameSettings FrameType = 0x4

var (
	_ Frame     = (*Settings)(nil)
	_ validator = (*Settings)(nil)
)

// Settings represents a SETTINGS frame. Recognized ids are
// kept in Values; ids this module does not recognize are preserved in
// Extensible so Generate can round-trip them, keeping an "open bucket"
// for unknown wire data rather than dropping it.
type Settings struct {
	ack        bool
	Values     map[SettingID]uint32
	Extensible map[uint16]uint32
}

func (s *Settings) Type() FrameType { return FrameSettings }

func (s *Settings) Reset() {
	s.ack = false
	for k := range s.Values {
		delete(s.Values, k)
	}
	for k := range s.Extensible {
		delete(s.Extensible, k)
	}
}

func (s *Settings) IsAck() bool     { return s.ack }
func (s *Settings) SetAck(v bool)   { s.ack = v }
func (s *Settings) Set(id SettingID, v uint32) {
	if s.Values == nil {
		s.Values = make(map[SettingID]uint32)
	}
	s.Values[id] = v
}

// Validate rejects unrecognized symbolic setting ids placed in Values
// directly (SettingID ids not in settingNames); ids preserved via the
// Extensible bucket round-trip without this check, since they were
// never claimed to be understood.
func (s *Settings) Validate() error {
	for id := range s.Values {
		if _, ok := settingNames[id]; !ok {
			return NewCompressionError("SETTINGS: unknown symbolic id " + id.String())
		}
	}
	return nil
}

func (s *Settings) Deserialize(frh *FrameHeader) error {
	payload := frh.payload
	if frh.Flags().Has(FlagAck) {
		s.ack = true
		if len(payload) != 0 {
			return NewProtocolError(FrameSizeError, "SETTINGS ack frame must have empty payload")
		}
		return nil
	}

	if len(payload)%6 != 0 {
		return NewProtocolError(FrameSizeError, "SETTINGS payload not a multiple of 6")
	}

	for i := 0; i+6 <= len(payload); i += 6 {
		id := SettingID(wire.BytesToUint16(payload[i : i+2]))
		val := wire.BytesToUint32(payload[i+2 : i+6])

		switch id {
		case SettingHeaderTableSize, SettingEnablePush, SettingMaxConcurrentStreams, SettingInitialWindowSize:
			s.Set(id, val)
		default:
			logger.Printf("SETTINGS: unrecognized id 0x%x, value %d kept in extensible bucket", uint16(id), val)
			if s.Extensible == nil {
				s.Extensible = make(map[uint16]uint32)
			}
			s.Extensible[uint16(id)] = val
		}
	}

	return nil
}

func (s *Settings) Serialize(frh *FrameHeader) {
	if s.ack {
		frh.SetFlags(frh.Flags().Add(FlagAck))
		frh.payload = frh.payload[:0]
		return
	}

	payload := frh.payload[:0]
	for id, val := range s.Values {
		payload = wire.AppendUint16Bytes(payload, uint16(id))
		payload = wire.AppendUint32Bytes(payload, val)
	}
	for id, val := range s.Extensible {
		payload = wire.AppendUint16Bytes(payload, id)
		payload = wire.AppendUint32Bytes(payload, val)
	}
	frh.payload = payload
}
