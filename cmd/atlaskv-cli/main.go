// Command atlaskv-cli is an embedded, non-networked REPL over an
// AtlasKV data directory. It opens the engine in-process, with no
// client/server wire protocol involved, and accepts get/put/delete/
// flush/stats/exit commands, one per line, for local inspection and manual
// testing of a data directory.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"atlaskv/internal/platform/repository/lsm_tree"
)

func main() {
	dataDir := flag.String("data-dir", "./atlaskv_data", "directory for the WAL and SSTables")
	flag.Parse()

	cfg := lsm_tree.DefaultEngineConfig()
	cfg.DataDir = *dataDir

	engine, err := lsm_tree.Open(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer engine.Close()

	fmt.Printf("atlaskv-cli: opened %s (memtable %d bytes, %d sstables)\n",
		engine.DataDir(), engine.MemTableSize(), engine.SSTableCount())
	fmt.Println("commands: get <key> | put <key> <value> | delete <key> | flush | stats | exit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("atlaskv> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := fields[0]

		switch cmd {
		case "exit", "quit":
			return
		case "get":
			if len(fields) != 2 {
				fmt.Println("usage: get <key>")
				continue
			}
			value, found, err := engine.Get([]byte(fields[1]))
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if !found {
				fmt.Println("(not found)")
				continue
			}
			fmt.Printf("%s\n", value)
		case "put":
			if len(fields) < 3 {
				fmt.Println("usage: put <key> <value>")
				continue
			}
			value := strings.Join(fields[2:], " ")
			if err := engine.Put([]byte(fields[1]), []byte(value)); err != nil {
				fmt.Println("error:", err)
			}
		case "delete":
			if len(fields) != 2 {
				fmt.Println("usage: delete <key>")
				continue
			}
			if err := engine.Delete([]byte(fields[1])); err != nil {
				fmt.Println("error:", err)
			}
		case "flush":
			if err := engine.Flush(); err != nil {
				fmt.Println("error:", err)
			}
		case "stats":
			fmt.Printf("memtable_bytes=%d sstable_count=%d\n", engine.MemTableSize(), engine.SSTableCount())
		default:
			fmt.Printf("unknown command: %s\n", cmd)
		}
	}
}
