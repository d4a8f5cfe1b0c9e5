package common

import (
	"os"
	"os/user"
	"runtime"
	"strings"
)

// HostInfo carries the host facts exposed to job templating
type HostInfo struct {
	OSName    string
	OSRelease string
	OSVersion string
	Arch      string
	Hostname  string
	Username  string
}

// CollectHostInfo gathers host facts. Release and version come from
// the kernel proc files on Linux; on other platforms they stay empty.
func CollectHostInfo() HostInfo {
	info := HostInfo{
		OSName: runtime.GOOS,
		Arch:   runtime.GOARCH,
	}

	if hostname, err := os.Hostname(); err == nil {
		info.Hostname = hostname
	}

	if u, err := user.Current(); err == nil {
		info.Username = u.Username
	}

	if runtime.GOOS == "linux" {
		info.OSRelease = readProcValue("/proc/sys/kernel/osrelease")
		info.OSVersion = readProcValue("/proc/sys/kernel/version")
	}

	return info
}

func readProcValue(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
