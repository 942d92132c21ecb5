package main

import (
	"fmt"
	"os"

	"github.com/inconshreveable/log15"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/tudgoi/pika/store"
)

var log = log15.New()

var (
	dataFlag = cli.StringFlag{
		Name:  "data",
		Value: "pika.db",
		Usage: "path to the store file",
	}
	engineFlag = cli.StringFlag{
		Name:  "engine",
		Value: "mst",
		Usage: "tree engine to use: mst or pt",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: int(log15.LvlInfo),
		Usage: "log verbosity (0-4)",
	}
)

func main() {
	app := cli.App{
		Version: "0.1.0",
		Name:    "pika",
		Usage:   "content-addressed, verifiable key-value store",
		Flags: []cli.Flag{
			verbosityFlag,
		},
		Commands: []cli.Command{
			{
				Name:  "init",
				Usage: "create a new store",
				Flags: []cli.Flag{
					dataFlag,
					engineFlag,
				},
				Action: initAction,
			},
			{
				Name:      "write",
				Usage:     "write a triple",
				ArgsUsage: "<entity> <attribute> <value>",
				Flags:     []cli.Flag{dataFlag},
				Action:    writeAction,
			},
			{
				Name:      "read",
				Usage:     "read a triple from the flat index",
				ArgsUsage: "<entity> <attribute>",
				Flags:     []cli.Flag{dataFlag},
				Action:    readAction,
			},
			{
				Name:      "ref",
				Usage:     "dump a ref's tree, or read a verified value under it",
				ArgsUsage: "[ref_name [entity attribute]]",
				Flags:     []cli.Flag{dataFlag},
				Action:    refAction,
			},
			{
				Name:   "stat",
				Usage:  "report user data size vs. repo overhead",
				Flags:  []cli.Flag{dataFlag},
				Action: statAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLog(ctx *cli.Context) {
	lvl := log15.Lvl(ctx.GlobalInt(verbosityFlag.Name))
	log15.Root().SetHandler(log15.LvlFilterHandler(lvl, log15.StderrHandler))
}

func initAction(ctx *cli.Context) error {
	initLog(ctx)

	engine, ok := store.ParseEngine(ctx.String(engineFlag.Name))
	if !ok {
		return fmt.Errorf("unrecognized engine %q, want mst or pt", ctx.String(engineFlag.Name))
	}

	s, err := store.Init(ctx.String(dataFlag.Name), engine)
	if err != nil {
		return err
	}
	defer s.Close()

	log.Info("initialized store", "path", ctx.String(dataFlag.Name), "engine", engine)
	return nil
}

func writeAction(ctx *cli.Context) error {
	initLog(ctx)

	args := ctx.Args()
	if len(args) != 3 {
		return fmt.Errorf("write requires <entity> <attribute> <value>")
	}

	s, err := store.Open(ctx.String(dataFlag.Name))
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Write(args[0], args[1], args[2])
}

func readAction(ctx *cli.Context) error {
	initLog(ctx)

	args := ctx.Args()
	if len(args) != 2 {
		return fmt.Errorf("read requires <entity> <attribute>")
	}

	s, err := store.Open(ctx.String(dataFlag.Name))
	if err != nil {
		return err
	}
	defer s.Close()

	value, ok, err := s.Read(args[0], args[1])
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("<absent>")
		return nil
	}
	fmt.Println(value)
	return nil
}

func refAction(ctx *cli.Context) error {
	initLog(ctx)

	args := ctx.Args()
	refName := "root"
	if len(args) >= 1 {
		refName = args[0]
	}

	s, err := store.Open(ctx.String(dataFlag.Name))
	if err != nil {
		return err
	}
	defer s.Close()

	if len(args) == 3 {
		value, ok, err := s.ReadRef(refName, args[1], args[2])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("<absent>")
			return nil
		}
		fmt.Println(value)
		return nil
	}

	return s.PrintRef(os.Stdout, refName)
}

func statAction(ctx *cli.Context) error {
	initLog(ctx)

	s, err := store.Open(ctx.String(dataFlag.Name))
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.Stat()
	if err != nil {
		return err
	}

	fmt.Printf("user bytes:  %d\n", stats.UserBytes)
	fmt.Printf("repo bytes:  %d\n", stats.RepoBytes)
	fmt.Printf("overhead:    %d\n", stats.Overhead)
	fmt.Printf("ratio:       %.3f\n", stats.Ratio)
	return nil
}
