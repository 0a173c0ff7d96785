package system

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
)

// Info is a snapshot of the router's state.
type Info struct {
	Hostname      string       `json:"hostname"`
	Kernel        string       `json:"kernel"`
	OS            string       `json:"os"`
	Arch          string       `json:"arch"`
	CPUs          int          `json:"cpus"`
	GoVersion     string       `json:"go_version"`
	Uptime        string       `json:"uptime"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	Load          [3]float64   `json:"load"`
	Memory        *MemoryInfo  `json:"memory,omitempty"`
	Storage       *StorageInfo `json:"storage,omitempty"`
	ServiceUptime string       `json:"service_uptime"`
}

// MemoryInfo reports RAM usage. Buffers and page cache count as free.
type MemoryInfo struct {
	Total      uint64  `json:"total"`
	Used       uint64  `json:"used"`
	TotalHuman string  `json:"total_human"`
	UsedHuman  string  `json:"used_human"`
	Percent    float64 `json:"percent"`
}

// StorageInfo reports usage of the filesystem holding a path.
type StorageInfo struct {
	Path       string  `json:"path"`
	Total      uint64  `json:"total"`
	Used       uint64  `json:"used"`
	Free       uint64  `json:"free"`
	TotalHuman string  `json:"total_human"`
	UsedHuman  string  `json:"used_human"`
	FreeHuman  string  `json:"free_human"`
	Percent    float64 `json:"percent"`
}

// hostStats is filled in by the platform specific files.
type hostStats struct {
	kernel   string
	uptime   time.Duration
	load     [3]float64
	memTotal uint64
	memFree  uint64
}

// Info collects host, memory and storage details. Parts the platform
// cannot provide are left empty rather than failing the whole call.
func (p *Provider) Info() *Info {
	info := &Info{
		Hostname:      "Unknown",
		Kernel:        "Unknown",
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		CPUs:          runtime.NumCPU(),
		GoVersion:     runtime.Version(),
		ServiceUptime: formatUptime(time.Since(p.startTime)),
	}
	if h, err := os.Hostname(); err == nil {
		info.Hostname = h
	}

	if st, err := readHostStats(); err == nil {
		if st.kernel != "" {
			info.Kernel = st.kernel
		}
		info.UptimeSeconds = int64(st.uptime.Seconds())
		info.Uptime = formatUptime(st.uptime)
		info.Load = st.load
		if st.memTotal > 0 {
			used := st.memTotal - st.memFree
			info.Memory = &MemoryInfo{
				Total:      st.memTotal,
				Used:       used,
				TotalHuman: humanize.IBytes(st.memTotal),
				UsedHuman:  humanize.IBytes(used),
				Percent:    percent(used, st.memTotal),
			}
		}
	} else {
		info.Uptime = "Unknown"
		p.logger.Debug("host stats unavailable")
	}

	if s, err := Storage(p.opts.StoragePath); err == nil {
		info.Storage = s
	}
	return info
}

// Storage reports usage of the filesystem that holds path.
func Storage(path string) (*StorageInfo, error) {
	total, free, err := statfs(path)
	if err != nil {
		return nil, err
	}
	used := total - free
	return &StorageInfo{
		Path:       path,
		Total:      total,
		Used:       used,
		Free:       free,
		TotalHuman: humanize.IBytes(total),
		UsedHuman:  humanize.IBytes(used),
		FreeHuman:  humanize.IBytes(free),
		Percent:    percent(used, total),
	}, nil
}

// formatUptime renders durations as "3d 4h 5m".
func formatUptime(d time.Duration) string {
	total := int64(d.Minutes())
	return fmt.Sprintf("%dd %dh %dm", total/(24*60), (total/60)%24, total%60)
}

func percent(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(int(float64(part)/float64(total)*1000)) / 10
}
