// Copyright 2021, 2026 Tamas Gulacsi. All rights reserved.

// Command caselog appends surgical case records to a worksheet,
// from the command line, CSV files or a web form.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/UNO-SOFT/zlog/v2"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"google.golang.org/api/option"

	"github.com/UNO-SOFT/sheetlog"
	"github.com/UNO-SOFT/sheetlog/gsheets"
	"github.com/UNO-SOFT/sheetlog/memsheet"
	"github.com/UNO-SOFT/sheetlog/pdf"
	"github.com/UNO-SOFT/sheetlog/web"
	"github.com/UNO-SOFT/sheetlog/xlsx"
)

var verbose zlog.VerboseVar
var logger = zlog.NewLogger(zlog.MaybeConsoleHandler(&verbose, os.Stderr)).SLog()

func main() {
	if err := Main(); err != nil {
		logger.Error("MAIN", "error", err)
		os.Exit(1)
	}
}

// backendConfig selects and opens the worksheet.
type backendConfig struct {
	Backend       string
	File          string
	Sheet         string
	SpreadsheetID string
	Credentials   string
	ExpectHost    string
}

func (bc *backendConfig) register(fs *flag.FlagSet) {
	fs.Var(&verbose, "v", "logging verbosity")
	fs.String("config", "", "config file (flag=value lines)")
	fs.StringVar(&bc.Backend, "backend", "xlsx", "worksheet backend: xlsx, sheets or mem")
	fs.StringVar(&bc.File, "file", "caselog.xlsx", "workbook file (xlsx backend)")
	fs.StringVar(&bc.Sheet, "sheet", "Cases", "sheet name")
	fs.StringVar(&bc.SpreadsheetID, "spreadsheet-id", "", "spreadsheet ID (sheets backend)")
	fs.StringVar(&bc.Credentials, "credentials", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"), "service account JSON (sheets backend)")
	fs.StringVar(&bc.ExpectHost, "expect-host", "", "refuse to start unless the backend is this host (Excel, Sheets or Memory)")
}

func (bc backendConfig) open(ctx context.Context) (sheetlog.RangeAccess, func() error, error) {
	nop := func() error { return nil }
	switch strings.ToLower(bc.Backend) {
	case "xlsx", "excel":
		ws, err := xlsx.Open(bc.File, bc.Sheet)
		if err != nil {
			return nil, nil, err
		}
		return ws, ws.Close, nil
	case "sheets", "gsheets", "google":
		if bc.SpreadsheetID == "" {
			return nil, nil, errors.New("-spreadsheet-id is required")
		}
		var opts []option.ClientOption
		if bc.Credentials != "" {
			opts = append(opts, option.WithCredentialsFile(bc.Credentials))
		}
		ws, err := gsheets.Open(ctx, bc.SpreadsheetID, bc.Sheet, opts...)
		if err != nil {
			return nil, nil, err
		}
		return ws, nop, nil
	case "mem", "memory":
		return memsheet.New(), nop, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", bc.Backend)
}

// session opens the backend and initializes a Session on it.
func (bc backendConfig) session(ctx context.Context) (*sheetlog.Session, *sheetlog.SheetLogger, sheetlog.RangeAccess, func() error, error) {
	ra, closer, err := bc.open(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	sl := sheetlog.New(ra, sheetlog.WithLogger(logger))
	sess := sheetlog.NewSession(sl, sheetlog.SessionConfig{
		ExpectHost: bc.ExpectHost,
		Logger:     logger,
		OnStatus:   func(st sheetlog.Status) { logger.Debug("status", "message", st.Message, "error", st.Error) },
	})
	if err := sess.Init(ctx, sheetlog.HostInfo{Host: sheetlog.HostOf(ra), Platform: runtime.GOOS}); err != nil {
		closer()
		return nil, nil, nil, nil, err
	}
	return sess, sl, ra, closer, nil
}

// stringsFlag collects the values of a repeated flag, in order.
type stringsFlag []string

func (ss *stringsFlag) String() string { return strings.Join(*ss, ", ") }
func (ss *stringsFlag) Set(s string) error {
	*ss = append(*ss, s)
	return nil
}

func Main() error {
	ffOpts := []ff.Option{
		ff.WithEnvVarPrefix("SHEETLOG"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithAllowMissingConfigFile(true),
	}

	var initCfg backendConfig
	fsInit := flag.NewFlagSet("init", flag.ContinueOnError)
	initCfg.register(fsInit)
	initCmd := ffcli.Command{Name: "init", FlagSet: fsInit, Options: ffOpts,
		ShortUsage: "init [flags]",
		ShortHelp:  "ensure the header row",
		Exec: func(ctx context.Context, args []string) error {
			sess, _, _, closer, err := initCfg.session(ctx)
			if err != nil {
				return err
			}
			defer closer()
			fmt.Println(sess.Status().Message)
			return nil
		},
	}

	var appendCfg backendConfig
	var form sheetlog.Form
	var attendants stringsFlag
	fsAppend := flag.NewFlagSet("append", flag.ContinueOnError)
	appendCfg.register(fsAppend)
	fsAppend.StringVar(&form.Date, "date", time.Now().Format(sheetlog.DateLayout), "date of the surgery")
	fsAppend.StringVar(&form.Age, "age", "", "age of the patient")
	fsAppend.StringVar(&form.Sex, "sex", "", "sex of the patient")
	fsAppend.StringVar(&form.MRN, "mrn", "", "medical record number")
	fsAppend.StringVar(&form.Diagnosis, "diagnosis", "", "diagnosis")
	fsAppend.StringVar(&form.Procedure, "procedure", "", "procedure")
	fsAppend.Var(&attendants, "attendant", "attendant (can be repeated)")
	fsAppend.StringVar(&form.Role, "role", "", "role")
	fsAppend.StringVar(&form.SurgeryType, "surgery-type", "", "surgery type")
	appendCmd := ffcli.Command{Name: "append", FlagSet: fsAppend, Options: ffOpts,
		ShortUsage: "append -age=34 -sex=F -mrn=123 ... [flags]",
		ShortHelp:  "log one case",
		Exec: func(ctx context.Context, args []string) error {
			sess, _, _, closer, err := appendCfg.session(ctx)
			if err != nil {
				return err
			}
			defer closer()
			form.Attendants = attendants
			if _, err := sess.Submit(ctx, form); err != nil {
				return err
			}
			fmt.Println(sess.Status().Message)
			return nil
		},
	}

	var importCfg backendConfig
	fsImport := flag.NewFlagSet("import", flag.ContinueOnError)
	importCfg.register(fsImport)
	flagImportEnc := fsImport.String("charset", sheetlog.EncName, "csv charset name")
	importCmd := ffcli.Command{Name: "import", FlagSet: fsImport, Options: ffOpts,
		ShortUsage: "import [flags] file.csv[.gz|.zst] ...",
		ShortHelp:  "append the records of CSV files",
		Exec: func(ctx context.Context, args []string) error {
			_, sl, _, closer, err := importCfg.session(ctx)
			if err != nil {
				return err
			}
			defer closer()
			if len(args) == 0 {
				args = []string{"-"}
			}
			for _, fn := range args {
				cr, err := sheetlog.OpenCsv(fn, *flagImportEnc)
				if err != nil {
					return fmt.Errorf("%q: %w", fn, err)
				}
				n, err := sheetlog.Import(ctx, sl, cr.Reader)
				cr.Close()
				logger.Info("imported", "file", fn, "rows", n)
				if err != nil {
					return fmt.Errorf("%q: %w", fn, err)
				}
			}
			return nil
		},
	}

	var exportCfg backendConfig
	pdfOpts := pdf.DefaultOptions()
	fsExport := flag.NewFlagSet("export", flag.ContinueOnError)
	exportCfg.register(fsExport)
	flagExportEnc := fsExport.String("charset", sheetlog.EncName, "csv charset name")
	flagOut := fsExport.String("o", "-", "output file name (.csv, .csv.gz, .csv.zst or .pdf)")
	flagFormat := fsExport.String("format", "", "csv or pdf (default: by the output file name)")
	fsExport.StringVar(&pdfOpts.Title, "title", "Surgical case log", "pdf title")
	fsExport.BoolVar(&pdfOpts.Landscape, "L", pdfOpts.Landscape, "landscape orientation")
	fsExport.Float64Var(&pdfOpts.FontSize, "f", pdfOpts.FontSize, "pdf font size")
	fsExport.Var(&pdfOpts.AlternateColor, "alternate-color", "alternate row color")
	exportCmd := ffcli.Command{Name: "export", FlagSet: fsExport, Options: ffOpts,
		ShortUsage: "export [flags]",
		ShortHelp:  "write the case log to CSV or PDF",
		Exec: func(ctx context.Context, args []string) error {
			ra, closer, err := exportCfg.open(ctx)
			if err != nil {
				return err
			}
			defer closer()
			rr, ok := ra.(sheetlog.RowsReader)
			if !ok {
				return fmt.Errorf("backend %q cannot list rows", exportCfg.Backend)
			}
			format := *flagFormat
			if format == "" {
				format = "csv"
				if strings.EqualFold(filepath.Ext(*flagOut), ".pdf") {
					format = "pdf"
				}
			}
			switch format {
			case "csv":
				cw, err := sheetlog.CreateCsv(*flagOut, *flagExportEnc)
				if err != nil {
					return err
				}
				if err := sheetlog.Export(ctx, rr, cw.Writer); err != nil {
					cw.Close()
					return err
				}
				return cw.Close()
			case "pdf":
				rows, err := rr.Rows(ctx)
				if err != nil {
					return err
				}
				b, err := pdf.Render(rows, pdfOpts)
				if err != nil {
					return err
				}
				if *flagOut == "" || *flagOut == "-" {
					_, err = os.Stdout.Write(b)
					return err
				}
				return os.WriteFile(*flagOut, b, 0o644)
			}
			return fmt.Errorf("unknown format %q", format)
		},
	}

	var serveCfg backendConfig
	webCfg := web.Config{Logger: logger}
	fsServe := flag.NewFlagSet("serve", flag.ContinueOnError)
	serveCfg.register(fsServe)
	flagAddr := fsServe.String("addr", ":8080", "address to listen on")
	fsServe.StringVar(&webCfg.Title, "title", "Surgical case log", "page title")
	fsServe.DurationVar(&webCfg.Timeout, "timeout", 30*time.Second, "timeout of one submission")
	fsServe.Var((*stringsFlag)(&webCfg.Choices.Attendants), "attendant", "selectable attendant (can be repeated)")
	fsServe.Var((*stringsFlag)(&webCfg.Choices.Roles), "role", "selectable role (can be repeated)")
	serveCmd := ffcli.Command{Name: "serve", FlagSet: fsServe, Options: ffOpts,
		ShortUsage: "serve [flags]",
		ShortHelp:  "serve the case log form",
		Exec: func(ctx context.Context, args []string) error {
			sess, _, _, closer, err := serveCfg.session(ctx)
			if err != nil {
				return err
			}
			defer closer()
			choices := web.DefaultChoices()
			if len(webCfg.Choices.Attendants) != 0 {
				choices.Attendants = webCfg.Choices.Attendants
			}
			if len(webCfg.Choices.Roles) != 0 {
				choices.Roles = webCfg.Choices.Roles
			}
			webCfg.Choices = choices
			srv := &http.Server{
				Addr:              *flagAddr,
				Handler:           web.New(sess, webCfg).Handler(),
				ReadHeaderTimeout: 2 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				srv.Shutdown(shutCtx)
			}()
			logger.Info("listening", "addr", srv.Addr, "backend", serveCfg.Backend)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	fs := flag.NewFlagSet("caselog", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	app := ffcli.Command{Name: "caselog", FlagSet: fs,
		ShortUsage:  "caselog <subcommand> [flags]",
		Subcommands: []*ffcli.Command{&initCmd, &appendCmd, &importCmd, &exportCmd, &serveCmd},
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
	}
	if err := app.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := app.Run(ctx); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, ffcli.DefaultUsageFunc(&app))
			return nil
		}
		return err
	}
	return nil
}
