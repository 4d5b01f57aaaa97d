// Command swankd is a SWANK server: it accepts SLIME connections,
// speaks the length-prefixed s-expression wire protocol, and dispatches
// :emacs-rex requests to an evaluator subprocess.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/fgallina/swank/internal/console"
	"github.com/fgallina/swank/internal/evaluator"
	"github.com/fgallina/swank/internal/hostinfo"
	"github.com/fgallina/swank/internal/logging"
	"github.com/fgallina/swank/pkg/sexp"
	"github.com/fgallina/swank/pkg/swank"
)

var (
	fBind        = flag.String("bind", "127.0.0.1", "address to bind the swank listener to")
	fPort        = flag.Int("port", 0, "TCP port to listen on (0 = OS-assigned)")
	fPortFile    = flag.String("portfile", "", "write the chosen port to this file")
	fEncoding    = flag.String("encoding", "utf-8-unix", "wire encoding name (not applied: payloads are always read and written as UTF-8)")
	fInterpreter = flag.String("interpreter", "", "command to run as the evaluator subprocess (empty = echo evaluator)")
	fConsole     = flag.Bool("console", false, "also run a local interactive console sharing the evaluator")
	fResolver    = flag.String("resolver", "", "DNS resolver address (host:port) for reverse-lookup of this host's name")
	fLevel       = flag.String("level", "warn", "log level: debug, info, warn, error, fatal")
	fVerbose     = flag.Bool("v", true, "log to stderr")
	fLogfile     = flag.String("logfile", "", "also log to this file")
)

var banner = "swankd -- a SWANK server for scriptable host runtimes\n"

func usage() {
	fmt.Print(banner)
	fmt.Println("usage: swankd [options]")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	level, err := logging.ParseLevel(*fLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logging.Init(level, *fVerbose, *fLogfile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.MustGetLogger("swankd")

	portFile := *fPortFile
	bindAddr := *fBind
	port := *fPort
	if sniffed, ok := sniffStartupLine(); ok {
		log.Info("using port file from startup s-expression: %v", sniffed)
		portFile = sniffed
	}

	info := hostinfo.Collect(*fResolver)
	swank.RegisterCoreHandlers(info)

	swank.RegisterStubHandlers()

	eval := newEvaluator(log)
	if closer, ok := eval.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	if *fConsole {
		go func() {
			if err := console.New(eval).Run(); err != nil {
				log.Error("console: %v", err)
			}
		}()
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(bindAddr, strconv.Itoa(port)))
	if err != nil {
		log.Fatal("listen: %v", err)
	}
	actualPort := ln.Addr().(*net.TCPAddr).Port
	log.Info("listening on %v", ln.Addr())

	if portFile != "" {
		if err := os.WriteFile(portFile, []byte(strconv.Itoa(actualPort)), 0644); err != nil {
			log.Fatal("writing port file: %v", err)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("shutting down")
		ln.Close()
		os.Exit(0)
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Error("accept: %v", err)
			return
		}
		go serveConn(conn, eval, log)
	}
}

func newEvaluator(log *logging.Logger) swank.Evaluator {
	if *fInterpreter == "" {
		log.Warn("no -interpreter configured, using echo evaluator")
		return evaluator.Echo{}
	}

	fields := strings.Fields(*fInterpreter)
	e, err := evaluator.NewPTYEvaluator(fields[0], fields[1:]...)
	if err != nil {
		log.Error("starting interpreter %q: %v, falling back to echo evaluator", *fInterpreter, err)
		return evaluator.Echo{}
	}
	return e
}

// serveConn runs one connection's request loop: send the unsolicited
// indentation-update frame, then read-dispatch-write until the peer
// closes or a frame-level error occurs (spec.md §5).
func serveConn(conn net.Conn, eval swank.Evaluator, log *logging.Logger) {
	defer conn.Close()
	log.Info("connection from %v", conn.RemoteAddr())

	if _, err := conn.Write(swank.IndentationUpdate()); err != nil {
		log.Error("writing indentation-update: %v", err)
		return
	}

	session := swank.NewSession(eval, nil)

	for {
		payload, err := swank.ReadFrame(conn)
		if err != nil {
			log.Debug("connection %v closing: %v", conn.RemoteAddr(), err)
			return
		}

		resp := swank.Dispatch(session, payload)
		if _, err := conn.Write(resp); err != nil {
			log.Error("writing response: %v", err)
			return
		}
	}
}

// sniffStartupLine implements spec.md §6's startup-input contract: read
// one line from stdin, parse it as an s-expression, and pull the
// port-file path from the last element of the last sub-list. If the
// console is enabled, stdin isn't a terminal, or parsing fails, the
// caller falls back to command-line configuration.
func sniffStartupLine() (string, bool) {
	if *fConsole || !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", false
	}

	r := bufio.NewReader(os.Stdin)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}

	v, err := sexp.Read(line)
	if err != nil || v.Kind != sexp.KindList || len(v.List) == 0 {
		return "", false
	}

	last := v.List[len(v.List)-1]
	if last.Kind != sexp.KindList || len(last.List) == 0 {
		return "", false
	}
	path := last.List[len(last.List)-1]
	if path.Kind != sexp.KindString {
		return "", false
	}
	return path.Str, true
}
