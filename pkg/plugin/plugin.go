package plugin

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/getgauge/gauge-proto/go/gauge_messages"
	"google.golang.org/grpc"

	"github.com/lirany1/pickles-explorer/pkg/config"
	"github.com/lirany1/pickles-explorer/pkg/gauge"
	"github.com/lirany1/pickles-explorer/pkg/generator"
	"github.com/lirany1/pickles-explorer/pkg/logger"
	"github.com/lirany1/pickles-explorer/pkg/storage"
)

// ReportDirName is created inside gauge's reports directory
const ReportDirName = "pickles-explorer"

// Plugin is a gauge reporter that publishes the feature explorer after a run
type Plugin struct {
	gauge_messages.UnimplementedReporterServer
	config   *config.Config
	server   *grpc.Server
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewPlugin creates a new plugin instance
func NewPlugin(cfg *config.Config) *Plugin {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Plugin{
		config:   cfg,
		stopChan: make(chan struct{}),
	}
}

// Start serves the reporter over gRPC until Kill is called
func (p *Plugin) Start() error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	p.server = grpc.NewServer(grpc.MaxRecvMsgSize(1024 * 1024 * 1024))
	gauge_messages.RegisterReporterServer(p.server, p)

	port := listener.Addr().(*net.TCPAddr).Port

	go func() {
		if err := p.server.Serve(listener); err != nil {
			logger.Errorf("gRPC server error: %v", err)
		}
		p.stop()
	}()

	// gauge reads the port from this exact line on stdout
	fmt.Fprintf(os.Stdout, "Listening on port:%d\n", port)
	_ = os.Stdout.Sync()

	logger.Infof("gRPC server ready on port %d", port)

	<-p.stopChan
	logger.Info("Plugin shutdown complete")
	return nil
}

func (p *Plugin) stop() {
	p.stopOnce.Do(func() { close(p.stopChan) })
}

// reportsDir resolves gauge's reports directory against the project root
func reportsDir() (string, string) {
	projectRoot := os.Getenv("GAUGE_PROJECT_ROOT")
	if projectRoot == "" {
		projectRoot = "."
	}

	dir := os.Getenv("gauge_reports_dir")
	if dir == "" {
		dir = filepath.Join(projectRoot, "reports")
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(projectRoot, dir)
	}
	return projectRoot, dir
}

// NotifySuiteResult converts the suite into a document and writes the dashboard
func (p *Plugin) NotifySuiteResult(ctx context.Context, result *gauge_messages.SuiteExecutionResult) (*gauge_messages.Empty, error) {
	if result.GetSuiteResult() == nil {
		return &gauge_messages.Empty{}, nil
	}
	logger.Info("Suite execution complete, generating feature explorer...")

	projectRoot, dir := reportsDir()
	if err := p.Generate(result.GetSuiteResult(), projectRoot, filepath.Join(dir, ReportDirName)); err != nil {
		logger.Errorf("Failed to generate report: %v", err)
		return &gauge_messages.Empty{}, err
	}
	return &gauge_messages.Empty{}, nil
}

// Generate writes the dashboard for a suite result into outputDir
func (p *Plugin) Generate(suite *gauge_messages.ProtoSuiteResult, projectRoot, outputDir string) error {
	var db *storage.Database
	if p.config.HistoryEnabled {
		var err error
		db, err = storage.NewDatabase(p.config.DataDir)
		if err != nil {
			logger.Warnf("History disabled: %v", err)
		} else {
			defer db.Close()
		}
	}

	doc := gauge.Convert(suite, projectRoot)
	return generator.NewGenerator(p.config, db).Generate(doc, "gauge:"+suite.GetProjectName(), outputDir)
}

// Kill stops the plugin
func (p *Plugin) Kill(ctx context.Context, request *gauge_messages.KillProcessRequest) (*gauge_messages.Empty, error) {
	logger.Info("Shutting down plugin...")
	if p.server != nil {
		go p.server.GracefulStop()
	}
	p.stop()
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyExecutionStarting(ctx context.Context, info *gauge_messages.ExecutionStartingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyExecutionEnding(ctx context.Context, result *gauge_messages.ExecutionEndingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifySpecExecutionStarting(ctx context.Context, info *gauge_messages.SpecExecutionStartingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifySpecExecutionEnding(ctx context.Context, result *gauge_messages.SpecExecutionEndingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyScenarioExecutionStarting(ctx context.Context, info *gauge_messages.ScenarioExecutionStartingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyScenarioExecutionEnding(ctx context.Context, result *gauge_messages.ScenarioExecutionEndingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyStepExecutionStarting(ctx context.Context, info *gauge_messages.StepExecutionStartingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyStepExecutionEnding(ctx context.Context, result *gauge_messages.StepExecutionEndingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyConceptExecutionStarting(ctx context.Context, info *gauge_messages.ConceptExecutionStartingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyConceptExecutionEnding(ctx context.Context, result *gauge_messages.ConceptExecutionEndingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}
