package sim

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// SectorSize is the block size used for reporting block numbers.
const SectorSize = 512

// DiskErr renders a one-line description of a failed request, e.g.
//
//	ada0: hard error cmd=read fsbn 40 of 32-47 (8.0 KiB)
//
// blkdone is the number of sectors already transferred before the failure,
// or -1 when unknown. It only affects multi-sector requests.
func DiskErr(req *Request, devName, what string, blkdone int64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s cmd=%s ", devName, what, req.Cmd)

	sn := req.Offset / SectorSize
	if req.Length <= SectorSize {
		fmt.Fprintf(&sb, "fsbn %d", sn)
	} else {
		if blkdone >= 0 {
			fmt.Fprintf(&sb, "fsbn %d of ", sn+blkdone)
		}
		fmt.Fprintf(&sb, "%d-%d", sn, sn+(req.Length-1)/SectorSize)
	}
	if req.Length > 0 {
		fmt.Fprintf(&sb, " (%s)", humanize.IBytes(uint64(req.Length)))
	}
	return sb.String()
}
