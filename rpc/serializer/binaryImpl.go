package serializer

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ValentinKolb/tStore/lib/snapshot"
	"github.com/ValentinKolb/tStore/lib/store"
	"github.com/ValentinKolb/tStore/lib/table"
	"github.com/ValentinKolb/tStore/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasTable   uint16 = 1 << 0
	hasColumns uint16 = 1 << 1
	hasRow     uint16 = 1 << 2
	hasRows    uint16 = 1 << 3
	hasNames   uint16 = 1 << 4
	hasInfo    uint16 = 1 << 5
	hasStats   uint16 = 1 << 6
	hasCount   uint16 = 1 << 7
	hasOk      uint16 = 1 << 8
	hasCode    uint16 = 1 << 9
	hasErr     uint16 = 1 << 10
)

// headerSize is 1 byte MsgType + 2 bytes flags
const headerSize = 3

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	w := table.NewBinaryWriter(64)

	// reserve the header, the flags are known after all fields are written
	w.Raw([]byte{byte(msg.MsgType), 0, 0})
	var flags uint16

	if msg.Table != "" {
		flags |= hasTable
		w.Str(msg.Table)
	}
	if msg.Columns != nil {
		flags |= hasColumns
		w.Columns(msg.Columns)
	}
	if msg.Row != nil {
		flags |= hasRow
		w.Row(msg.Row)
	}
	if msg.Rows != nil {
		flags |= hasRows
		w.Uvarint(uint64(len(msg.Rows)))
		for _, row := range msg.Rows {
			w.Row(row)
		}
	}
	if msg.Names != nil {
		flags |= hasNames
		w.Uvarint(uint64(len(msg.Names)))
		for _, name := range msg.Names {
			w.Str(name)
		}
	}
	if msg.Info != nil {
		flags |= hasInfo
		w.Str(msg.Info.ID)
		w.Str(msg.Info.Name)
		w.Columns(msg.Info.Columns)
		w.Uvarint(uint64(msg.Info.Rows))
	}
	if msg.Stats != nil {
		flags |= hasStats
		writeStats(w, msg.Stats)
	}
	if msg.Count != 0 {
		flags |= hasCount
		w.Varint(int64(msg.Count))
	}
	if msg.Ok {
		flags |= hasOk
	}
	if msg.Code != store.RetCSuccess {
		flags |= hasCode
		w.Uvarint(uint64(msg.Code))
	}
	if msg.Err != "" {
		flags |= hasErr
		w.Str(msg.Err)
	}

	result := w.Bytes()
	binary.BigEndian.PutUint16(result[1:headerSize], flags)
	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < headerSize {
		return fmt.Errorf("data too short for message header")
	}

	*msg = common.Message{
		MsgType: common.MessageType(data[0]),
	}
	flags := binary.BigEndian.Uint16(data[1:headerSize])
	r := table.NewBinaryReader(data[headerSize:])

	if flags&hasTable != 0 {
		msg.Table = r.Str()
	}
	if flags&hasColumns != 0 {
		msg.Columns = r.Columns()
	}
	if flags&hasRow != 0 {
		msg.Row = r.Row()
	}
	if flags&hasRows != 0 {
		n := r.Uvarint()
		msg.Rows = make([]table.Row, 0, min(n, uint64(r.Remaining())))
		for i := uint64(0); i < n && r.Err() == nil; i++ {
			msg.Rows = append(msg.Rows, r.Row())
		}
	}
	if flags&hasNames != 0 {
		n := r.Uvarint()
		msg.Names = make([]string, 0, min(n, uint64(r.Remaining())))
		for i := uint64(0); i < n && r.Err() == nil; i++ {
			msg.Names = append(msg.Names, r.Str())
		}
	}
	if flags&hasInfo != 0 {
		msg.Info = &table.Info{
			ID:   r.Str(),
			Name: r.Str(),
		}
		msg.Info.Columns = r.Columns()
		msg.Info.Rows = int(r.Uvarint())
	}
	if flags&hasStats != 0 {
		msg.Stats = readStats(r)
	}
	if flags&hasCount != 0 {
		msg.Count = int(r.Varint())
	}
	msg.Ok = flags&hasOk != 0
	if flags&hasCode != 0 {
		msg.Code = store.RetCode(r.Uvarint())
	}
	if flags&hasErr != 0 {
		msg.Err = r.Str()
	}

	if r.Err() != nil {
		return fmt.Errorf("malformed message: %w", r.Err())
	}
	if r.Remaining() != 0 {
		return fmt.Errorf("malformed message: %d trailing bytes", r.Remaining())
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// writeStats writes the store statistics, followed by the optional snapshot statistics
func writeStats(w *table.BinaryWriter, s *store.Stats) {
	w.Uvarint(uint64(s.Tables))
	w.Uvarint(uint64(s.Rows))
	w.Varint(int64(s.Uptime))
	w.Bool(s.Snapshot != nil)
	if s.Snapshot == nil {
		return
	}
	snap := s.Snapshot
	w.Str(snap.Path)
	w.Str(snap.Format)
	w.Varint(snap.Saves)
	w.Varint(snap.Failures)
	w.Varint(snap.LastSizeBytes)
	if snap.LastSaveAt.IsZero() {
		w.Varint(0)
	} else {
		w.Varint(snap.LastSaveAt.UnixNano())
	}
	for _, f := range []float64{snap.MeanSaveMs, snap.P99SaveMs, snap.MaxSaveMs, snap.MeanSizeBytes} {
		w.Uint64(math.Float64bits(f))
	}
}

// readStats reads statistics written by writeStats
func readStats(r *table.BinaryReader) *store.Stats {
	s := &store.Stats{
		Tables: int(r.Uvarint()),
		Rows:   int(r.Uvarint()),
		Uptime: time.Duration(r.Varint()),
	}
	if !r.Bool() {
		return s
	}
	snap := &snapshot.Stats{
		Path:          r.Str(),
		Format:        r.Str(),
		Saves:         r.Varint(),
		Failures:      r.Varint(),
		LastSizeBytes: r.Varint(),
	}
	if ns := r.Varint(); ns != 0 {
		snap.LastSaveAt = time.Unix(0, ns)
	}
	floats := make([]float64, 4)
	for i := range floats {
		floats[i] = math.Float64frombits(r.Uint64())
	}
	snap.MeanSaveMs, snap.P99SaveMs, snap.MaxSaveMs, snap.MeanSizeBytes = floats[0], floats[1], floats[2], floats[3]
	s.Snapshot = snap
	return s
}
