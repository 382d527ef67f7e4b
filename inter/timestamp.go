package inter

import (
	"time"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
)

// Timestamp is a block time in nanoseconds since the Unix epoch.
type Timestamp uint64

// FromUnix converts seconds since the Unix epoch into a Timestamp.
func FromUnix(sec int64) Timestamp {
	return Timestamp(sec) * Timestamp(time.Second)
}

// Unix returns the timestamp in whole seconds.
func (t Timestamp) Unix() int64 {
	return int64(t / Timestamp(time.Second))
}

// Time converts the timestamp to a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t)).UTC()
}

// Bytes returns the big-endian encoding of the timestamp.
func (t Timestamp) Bytes() []byte {
	return bigendian.Uint64ToBytes(uint64(t))
}

// String implements fmt.Stringer.
func (t Timestamp) String() string {
	return t.Time().Format(time.RFC3339)
}
