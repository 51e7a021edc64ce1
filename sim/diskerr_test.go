package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiskErr(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		blkdone int64
		want    string
	}{
		{
			name:    "single sector",
			req:     NewRequest("r", 0, CmdRead, 40*SectorSize, SectorSize),
			blkdone: 0,
			want:    "ada0: hard error cmd=read fsbn 40 (512 B)",
		},
		{
			name:    "multi sector with progress",
			req:     NewRequest("r", 0, CmdWrite, 32*SectorSize, 16*SectorSize),
			blkdone: 8,
			want:    "ada0: hard error cmd=write fsbn 40 of 32-47 (8.0 KiB)",
		},
		{
			name:    "multi sector progress unknown",
			req:     NewRequest("r", 0, CmdDelete, 0, 4*SectorSize),
			blkdone: -1,
			want:    "ada0: hard error cmd=delete 0-3 (2.0 KiB)",
		},
		{
			name:    "no data",
			req:     NewRequest("r", 0, CmdFlush, 0, 0),
			blkdone: 0,
			want:    "ada0: hard error cmd=flush fsbn 0",
		},
		{
			name:    "unknown command",
			req:     NewRequest("r", 0, Command(99), 2*SectorSize, SectorSize),
			blkdone: 0,
			want:    "ada0: hard error cmd=illegal fsbn 2 (512 B)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DiskErr(tt.req, "ada0", "hard error", tt.blkdone))
		})
	}
}
