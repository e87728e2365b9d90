// Package commands содержит команды hotelctl: операторский доступ к движку
// бронирований без HTTP-сервиса.
package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/hotelres/cmd/hotelctl/output"
	"github.com/vladislavdragonenkov/hotelres/internal/app"
	"github.com/vladislavdragonenkov/hotelres/internal/service/reservation"
	"github.com/vladislavdragonenkov/hotelres/internal/version"
)

// session: состояние одного запуска CLI.
type session struct {
	dataDir    string
	driver     string
	sqlitePath string
	jsonOutput bool
	verbose    bool

	out    io.Writer
	errOut io.Writer

	engine  *reservation.Engine
	closeFn func() error
	printer *output.Printer
}

// Execute runs the root command
func Execute() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		output.New(os.Stderr, false).Error("%v", err)
		os.Exit(1)
	}
}

// execute выполняет одну команду и всегда закрывает хранилище, в том числе
// когда команда завершилась ошибкой.
func execute(args []string, out, errOut io.Writer) (err error) {
	rootCmd, s := newRootCmd(out, errOut)
	rootCmd.SetArgs(args)
	defer func() {
		if closeErr := s.close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close store: %w", closeErr)
		}
	}()
	return rootCmd.Execute()
}

func newRootCmd(out, errOut io.Writer) (*cobra.Command, *session) {
	s := &session{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "hotelctl",
		Short: "hotelctl - hotel reservation store operator tool",
		Long: `hotelctl works directly with the hotel reservation record store.

Storage settings come from HOTELRES_* environment variables (and .env);
flags override them.

Examples:
  hotelctl hotel create --name "Hotel A" --location Puebla --rooms 10
  hotelctl reservation create --customer 1 --hotel 1 --rooms 3 --start 2026-02-22 --end 2026-02-24
  hotelctl audit --json`,
		Version:           version.GetVersion(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: s.open,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&s.dataDir, "data-dir", "", "Directory of JSON store files (json driver)")
	flags.StringVar(&s.driver, "driver", "", "Storage driver: json|memory|sqlite|postgres|s3")
	flags.StringVar(&s.sqlitePath, "sqlite-path", "", "SQLite database file (sqlite driver)")
	flags.BoolVarP(&s.verbose, "verbose", "v", false, "Verbose output")
	flags.BoolVar(&s.jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(
		newHotelCmd(s),
		newCustomerCmd(s),
		newReservationCmd(s),
		newAuditCmd(s),
	)
	return rootCmd, s
}

// open собирает конфигурацию и открывает движок перед выполнением команды.
func (s *session) open(cmd *cobra.Command, _ []string) error {
	s.printer = output.New(s.out, s.jsonOutput)

	cfg, warnings := app.LoadConfig(os.LookupEnv)
	if s.dataDir != "" {
		cfg.DataDir = s.dataDir
	}
	if s.sqlitePath != "" {
		cfg.SQLitePath = s.sqlitePath
	}
	if s.driver != "" {
		driver, err := app.ParseStorageDriver(s.driver)
		if err != nil {
			return err
		}
		cfg.StorageDriver = driver
	}
	// События в Kafka публикует только сервис.
	cfg.KafkaBrokers = ""

	logger := s.logger()
	for _, warning := range warnings {
		logger.Warn(warning)
	}

	engine, closeFn, err := app.OpenEngine(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	s.engine = engine
	s.closeFn = closeFn
	return nil
}

func (s *session) close() error {
	if s.closeFn == nil {
		return nil
	}
	closeFn := s.closeFn
	s.closeFn = nil
	return closeFn()
}

func (s *session) logger() *log.Entry {
	logger := log.New()
	logger.SetOutput(s.errOut)
	logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(log.WarnLevel)
	if s.verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger.WithField("component", "hotelctl")
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// optionalString возвращает указатель на значение, только если флаг задан явно.
func optionalString(cmd *cobra.Command, name string) (*string, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
