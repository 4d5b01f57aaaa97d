// Package hostinfo gathers the machine-identifying fields the
// connection-info handler reports: process id, CPU model, and a
// "host [ip]" instance string with a best-effort reverse-DNS lookup.
package hostinfo

import (
	"net"
	"os"
	"runtime"
	"strings"
	"time"

	proc "github.com/c9s/goprocinfo/linux"
	"github.com/miekg/dns"

	"github.com/fgallina/swank/internal/logging"
)

var log = logging.MustGetLogger("hostinfo")

// protocolVersion is the date-stamped wire protocol version reported
// in connection-info's :version slot, matching the server release this
// binary implements.
const protocolVersion = "2012-07-13"

// Info implements swank.HostInfo.
type Info struct {
	pid            int
	machineType    string
	machineVersion string
	instance       string
	implVersion    string
}

// Collect gathers the host fields once at server startup. The DNS lookup
// is best-effort; failures fall back to os.Hostname().
func Collect(resolverAddr string) *Info {
	model := cpuModel()
	return &Info{
		pid:            os.Getpid(),
		machineType:    model,
		machineVersion: model,
		instance:       instanceString(resolverAddr),
		implVersion:    runtime.Version(),
	}
}

func (i *Info) PID() int                      { return i.pid }
func (i *Info) MachineType() string           { return i.machineType }
func (i *Info) MachineVersion() string        { return i.machineVersion }
func (i *Info) Instance() string               { return i.instance }
func (i *Info) ImplementationVersion() string { return i.implVersion }
func (i *Info) ProtocolVersion() string        { return protocolVersion }

// cpuModel reads /proc/cpuinfo via goprocinfo; on platforms where
// /proc isn't available (non-Linux), it falls back to GOARCH.
func cpuModel() string {
	info, err := proc.ReadCPUInfo("/proc/cpuinfo")
	if err != nil || len(info.Processors) == 0 {
		log.Debug("cpuinfo unavailable, falling back to GOARCH: %v", err)
		return runtime.GOARCH
	}
	model := strings.TrimSpace(info.Processors[0].ModelName)
	if model == "" {
		return runtime.GOARCH
	}
	return model
}

// instanceString builds "host [ip]", looking up the primary non-loopback
// address. When resolverAddr is set, a PTR lookup against it takes
// precedence over os.Hostname() so a configured resolver actually gets
// to confirm or correct the reported name (e.g. a container's
// os.Hostname() is often just its short container ID); a failed lookup
// is not fatal, it just falls back to os.Hostname(), or to "unknown" if
// that is empty too. The " [ip]" suffix is omitted only when no
// non-loopback IPv4 address is found.
func instanceString(resolverAddr string) string {
	ip := primaryAddr()
	host := ""
	if resolverAddr != "" {
		host = ptrLookup(ip, resolverAddr)
	}
	if host == "" {
		host, _ = os.Hostname()
	}
	if host == "" {
		host = "unknown"
	}
	if ip == "" {
		return host
	}
	return host + " [" + ip + "]"
}

func primaryAddr() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return ""
}

// ptrLookup performs a manual PTR query, mirroring the Exchange usage
// in protonuke/dns.go rather than relying on net.LookupAddr, so a
// custom resolver address can be targeted.
func ptrLookup(ip, resolverAddr string) string {
	if ip == "" || resolverAddr == "" {
		return ""
	}
	reverse, err := dns.ReverseAddr(ip)
	if err != nil {
		return ""
	}

	m := new(dns.Msg)
	m.SetQuestion(reverse, dns.TypePTR)

	c := new(dns.Client)
	c.Timeout = 500 * time.Millisecond

	in, _, err := c.Exchange(m, resolverAddr)
	if err != nil || len(in.Answer) == 0 {
		return ""
	}
	if ptr, ok := in.Answer[0].(*dns.PTR); ok {
		return strings.TrimSuffix(ptr.Ptr, ".")
	}
	return ""
}
