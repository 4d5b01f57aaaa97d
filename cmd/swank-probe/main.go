// Command swank-probe is a minimal manual-testing client for swankd: it
// dials the server, reads the unsolicited indentation-update frame,
// then sends one :emacs-rex request per stdin line and prints the
// decoded response.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/fgallina/swank/pkg/sexp"
	"github.com/fgallina/swank/pkg/swank"
)

var (
	fAddr = flag.String("addr", "127.0.0.1:4005", "swankd address to dial")
)

// Conn wraps a dialed connection with the request id counter SLIME
// clients are expected to maintain.
type Conn struct {
	conn net.Conn
	id   int64
}

func Dial(addr string) (*Conn, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	first, err := swank.ReadFrame(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("reading handshake frame: %w", err)
	}
	v, err := sexp.Read(string(first))
	if err == nil {
		fmt.Println("handshake:", sexp.Write(v))
	}

	return &Conn{conn: conn}, nil
}

// Rex sends op and args as a single :emacs-rex form and returns the
// decoded response.
func (c *Conn) Rex(op string, args ...string) (sexp.Value, error) {
	c.id++

	req := buildRex(op, args, c.id)
	framed, err := swank.Frame([]byte(req))
	if err != nil {
		return sexp.Value{}, err
	}
	if _, err := c.conn.Write(framed); err != nil {
		return sexp.Value{}, err
	}

	payload, err := swank.ReadFrame(c.conn)
	if err != nil {
		return sexp.Value{}, err
	}
	return sexp.Read(string(payload))
}

func buildRex(op string, args []string, id int64) string {
	callForm := "(" + op
	for _, a := range args {
		callForm += " " + a
	}
	callForm += ")"
	return fmt.Sprintf("(:emacs-rex %s nil t %d)", callForm, id)
}

func main() {
	flag.Parse()

	c, err := Dial(*fAddr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dial:", err)
		os.Exit(1)
	}

	fmt.Println("connected to", *fAddr, "- enter a swank op, e.g.: swank:connection-info")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		op := scanner.Text()
		if op == "" {
			continue
		}
		resp, err := c.Rex(op)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		fmt.Println(sexp.Write(resp))
	}
}
