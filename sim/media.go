package sim

import (
	"github.com/tidwall/btree"
	"golang.org/x/sys/unix"
)

// Media is the in-memory backing store of a simulated device. It tracks
// which sectors hold data and the write generation that last touched each.
type Media struct {
	sectors int64 // capacity in sectors
	gen     uint64
	written btree.Map[int64, uint64]
}

// NewMedia creates an empty medium of the given capacity in bytes.
func NewMedia(capacity int64) *Media {
	return &Media{sectors: capacity / SectorSize}
}

// Capacity returns the medium size in bytes.
func (m *Media) Capacity() int64 {
	return m.sectors * SectorSize
}

// Written returns the number of sectors currently holding data.
func (m *Media) Written() int {
	return m.written.Len()
}

// Generation returns the write generation of sector sn and whether the
// sector holds data.
func (m *Media) Generation(sn int64) (uint64, bool) {
	return m.written.Get(sn)
}

// Execute applies req to the medium and returns its completion status.
// Reads and attribute queries leave the medium untouched. An attribute
// query reports the number of written sectors in req.Attr.
func (m *Media) Execute(req *Request) unix.Errno {
	if req.Offset < 0 || req.Length < 0 || req.Offset%SectorSize != 0 {
		return unix.EINVAL
	}
	if req.Length > m.Capacity()-req.Offset {
		return unix.ENXIO
	}
	first := req.Offset / SectorSize
	end := first + (req.Length+SectorSize-1)/SectorSize
	if end > m.sectors {
		return unix.ENXIO
	}

	switch req.Cmd {
	case CmdWrite:
		m.gen++
		for sn := first; sn < end; sn++ {
			m.written.Set(sn, m.gen)
		}
	case CmdDelete:
		var trimmed []int64
		m.written.Ascend(first, func(sn int64, _ uint64) bool {
			if sn >= end {
				return false
			}
			trimmed = append(trimmed, sn)
			return true
		})
		for _, sn := range trimmed {
			m.written.Delete(sn)
		}
	case CmdGetAttr:
		req.Attr = int64(m.written.Len())
	case CmdRead, CmdFlush:
	default:
		return unix.EINVAL
	}
	return 0
}
