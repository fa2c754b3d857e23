package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/quantmind-br/scaffold-go/internal/config"
	"github.com/quantmind-br/scaffold-go/internal/domain"
	"github.com/quantmind-br/scaffold-go/internal/fetcher"
	"github.com/quantmind-br/scaffold-go/internal/utils"
	"github.com/quantmind-br/scaffold-go/internal/vcs"
	"github.com/quantmind-br/scaffold-go/tests/mocks"
	"github.com/quantmind-br/scaffold-go/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// recordingReporter remembers every span in order
type recordingReporter struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingReporter) Begin(label string) domain.ProgressHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "begin "+label)
	return label
}

func (r *recordingReporter) End(handle domain.ProgressHandle, succeeded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	outcome := "ok"
	if !succeeded {
		outcome = "failed"
	}
	r.events = append(r.events, "end "+handle.(string)+" "+outcome)
}

type fixture struct {
	workDir  string
	server   *testutil.TemplateServer
	reporter *recordingReporter
}

func newFixture(t *testing.T) *fixture {
	return &fixture{
		workDir:  t.TempDir(),
		server:   testutil.NewTemplateServer(t, testutil.TemplateZip(t)),
		reporter: &recordingReporter{},
	}
}

func (f *fixture) orchestrator(t *testing.T, v domain.VCSInitializer) *Orchestrator {
	t.Helper()

	o, err := NewOrchestrator(OrchestratorOptions{
		Config:   config.Default(),
		Template: domain.TemplateSource{URL: f.server.ArchiveURL()},
		WorkDir:  f.workDir,
		Fetcher:  fetcher.NewClient(fetcher.DefaultClientOptions()),
		VCS:      v,
		Reporter: f.reporter,
		Logger:   testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	return o
}

// succeedingRunner expects exactly one git init inside dest
func succeedingRunner(t *testing.T, dest string) domain.VCSInitializer {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	runner.EXPECT().Run(gomock.Any(), "git", []string{"init"}, dest).Return(0, nil).Times(1)
	return vcs.NewExecInitializer(vcs.ExecOptions{Runner: runner})
}

func TestOrchestrator_Run_HappyPath(t *testing.T) {
	f := newFixture(t)
	dest := filepath.Join(f.workDir, "myapp")

	result := f.orchestrator(t, vcs.NewGoGitInitializer(nil, nil)).Run(context.Background(), "myapp")
	require.NoError(t, result.Err)

	assert.True(t, result.Succeeded())
	assert.Equal(t, domain.StateDone, result.State)
	assert.Equal(t, dest, result.Request.DestinationPath)
	assert.Equal(t, 1, f.server.Hits())

	testutil.AssertTree(t, dest, testutil.TemplateFiles())
	testutil.AssertNotExists(t, filepath.Join(dest, "react-template-1"))
	_, err := git.PlainOpen(dest)
	assert.NoError(t, err, "repository metadata present")

	assert.Empty(t, testutil.TransientArchives(t, f.workDir))
	assert.Equal(t, []string{"myapp"}, testutil.ListDir(t, f.workDir))

	assert.Equal(t, []string{
		"begin " + utils.DescDownloading,
		"end " + utils.DescDownloading + " ok",
		"begin " + utils.DescExtracting,
		"end " + utils.DescExtracting + " ok",
	}, f.reporter.events)
}

func TestOrchestrator_Run_InitializesInsideDestination(t *testing.T) {
	f := newFixture(t)
	dest := filepath.Join(f.workDir, "myapp")

	result := f.orchestrator(t, succeedingRunner(t, dest)).Run(context.Background(), "myapp")
	require.NoError(t, result.Err)
	testutil.AssertTree(t, dest, testutil.TemplateFiles())
}

func TestOrchestrator_Run_DestinationExists(t *testing.T) {
	for _, kind := range []string{"dir", "file"} {
		t.Run(kind, func(t *testing.T) {
			f := newFixture(t)
			dest := filepath.Join(f.workDir, "myapp")
			if kind == "dir" {
				require.NoError(t, os.Mkdir(dest, 0755))
			} else {
				require.NoError(t, os.WriteFile(dest, []byte("keep"), 0644))
			}

			ctrl := gomock.NewController(t)
			runner := mocks.NewMockCommandRunner(ctrl)
			result := f.orchestrator(t, vcs.NewExecInitializer(vcs.ExecOptions{Runner: runner})).
				Run(context.Background(), "myapp")

			require.Error(t, result.Err)
			assert.True(t, errors.Is(result.Err, domain.ErrDestinationExists))
			assert.Equal(t, domain.StageGuard, result.FailedStage())
			assert.Equal(t, domain.StateIdle, result.LastState)

			assert.Zero(t, f.server.Hits(), "no request made")
			assert.Equal(t, []string{"myapp"}, testutil.ListDir(t, f.workDir))
			assert.Empty(t, f.reporter.events)
		})
	}
}

func TestOrchestrator_Run_FetchFailure(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		f := newFixture(t)
		f.server.SetStatus(http.StatusNotFound)

		ctrl := gomock.NewController(t)
		runner := mocks.NewMockCommandRunner(ctrl)
		result := f.orchestrator(t, vcs.NewExecInitializer(vcs.ExecOptions{Runner: runner})).
			Run(context.Background(), "myapp")

		require.Error(t, result.Err)
		assert.Equal(t, domain.StageFetch, result.FailedStage())
		assert.Equal(t, domain.StateGuardChecked, result.LastState)

		var fErr *domain.FetchError
		require.True(t, errors.As(result.Err, &fErr))
		assert.Equal(t, http.StatusNotFound, fErr.StatusCode)

		testutil.AssertNotExists(t, filepath.Join(f.workDir, "myapp"))
		assert.Empty(t, testutil.ListDir(t, f.workDir))
		assert.Equal(t, "end "+utils.DescDownloading+" failed", f.reporter.events[1])
	})

	t.Run("unreachable host", func(t *testing.T) {
		f := newFixture(t)
		o := f.orchestrator(t, vcs.NewGoGitInitializer(nil, nil))
		o.template = domain.TemplateSource{URL: testutil.UnreachableURL(t)}

		result := o.Run(context.Background(), "myapp")
		require.Error(t, result.Err)
		assert.Equal(t, domain.StageFetch, result.FailedStage())
		testutil.AssertNotExists(t, filepath.Join(f.workDir, "myapp"))
	})
}

func TestOrchestrator_Run_CorruptArchive(t *testing.T) {
	f := newFixture(t)
	f.server.SetBody([]byte("<html>not a zip</html>"))

	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	result := f.orchestrator(t, vcs.NewExecInitializer(vcs.ExecOptions{Runner: runner})).
		Run(context.Background(), "myapp")

	require.Error(t, result.Err)
	assert.Equal(t, domain.StageExtract, result.FailedStage())
	assert.Equal(t, domain.StatePersisted, result.LastState)
	assert.ErrorIs(t, result.Err, domain.ErrCorruptArchive)

	assert.Empty(t, testutil.TransientArchives(t, f.workDir), "transient file removed")
	assert.Empty(t, testutil.ListDir(t, f.workDir))
}

func TestOrchestrator_Run_UnsafeArchive(t *testing.T) {
	f := newFixture(t)
	f.server.SetBody(testutil.BuildZip(t, []testutil.ZipEntry{
		{Name: "react-template-1/ok.txt", Body: "ok"},
		{Name: "react-template-1/../../escape.txt", Body: "evil"},
	}))

	result := f.orchestrator(t, vcs.NewGoGitInitializer(nil, nil)).Run(context.Background(), "myapp")

	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, domain.ErrUnsafeEntry)
	testutil.AssertNotExists(t, filepath.Join(filepath.Dir(f.workDir), "escape.txt"))
	assert.Empty(t, testutil.ListDir(t, f.workDir))
}

func TestOrchestrator_Run_RetryAfterRemovingConflict(t *testing.T) {
	f := newFixture(t)
	dest := filepath.Join(f.workDir, "myapp")
	require.NoError(t, os.Mkdir(dest, 0755))

	o := f.orchestrator(t, vcs.NewGoGitInitializer(nil, nil))

	first := o.Run(context.Background(), "myapp")
	require.Error(t, first.Err)
	assert.Equal(t, domain.StageGuard, first.FailedStage())

	require.NoError(t, os.Remove(dest))

	second := o.Run(context.Background(), "myapp")
	require.NoError(t, second.Err)
	testutil.AssertTree(t, dest, testutil.TemplateFiles())
	assert.Equal(t, 1, f.server.Hits())
}

func TestOrchestrator_Run_VCSToolMissing(t *testing.T) {
	f := newFixture(t)
	dest := filepath.Join(f.workDir, "myapp")

	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	runner.EXPECT().Run(gomock.Any(), "git", []string{"init"}, dest).
		Return(-1, domain.ErrToolNotFound)

	result := f.orchestrator(t, vcs.NewExecInitializer(vcs.ExecOptions{Runner: runner})).
		Run(context.Background(), "myapp")

	require.Error(t, result.Err)
	assert.Equal(t, domain.StageVCS, result.FailedStage())
	assert.Equal(t, domain.StateCleanedUp, result.LastState)
	assert.ErrorIs(t, result.Err, domain.ErrToolNotFound)

	testutil.AssertTree(t, dest, testutil.TemplateFiles())
	assert.Empty(t, testutil.TransientArchives(t, f.workDir))
}

func TestOrchestrator_Run_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := f.orchestrator(t, vcs.NewGoGitInitializer(nil, nil)).Run(ctx, "myapp")

	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, context.Canceled)
	assert.Equal(t, domain.StageFetch, result.FailedStage())
	assert.Empty(t, testutil.ListDir(t, f.workDir))
}

func TestOrchestrator_Run_InvalidName(t *testing.T) {
	f := newFixture(t)

	result := f.orchestrator(t, vcs.NewGoGitInitializer(nil, nil)).Run(context.Background(), "  ")

	require.Error(t, result.Err)
	var vErr *domain.ValidationError
	assert.True(t, errors.As(result.Err, &vErr))
	assert.False(t, result.Succeeded())
	assert.Zero(t, f.server.Hits())
}

func TestOrchestrator_Run_NestedAppPath(t *testing.T) {
	f := newFixture(t)

	result := f.orchestrator(t, vcs.NewGoGitInitializer(nil, nil)).Run(context.Background(), "apps/web")
	require.NoError(t, result.Err)

	testutil.AssertTree(t, filepath.Join(f.workDir, "apps", "web"), testutil.TemplateFiles())
	assert.Empty(t, testutil.TransientArchives(t, f.workDir))
}

func TestNewOrchestrator(t *testing.T) {
	t.Run("requires config", func(t *testing.T) {
		_, err := NewOrchestrator(OrchestratorOptions{})
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		o, err := NewOrchestrator(OrchestratorOptions{
			Config:  config.Default(),
			WorkDir: t.TempDir(),
			Logger:  testutil.NewTestLogger(t),
		})
		require.NoError(t, err)

		assert.Equal(t, config.DefaultTemplateURL, o.template.URL)
		assert.Equal(t, config.DefaultPackageManager, o.PackageManager())
		assert.Equal(t, config.VCSBackendExec, o.vcs.Name())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.VCS.Backend = "hg"

		_, err := NewOrchestrator(OrchestratorOptions{Config: cfg, WorkDir: t.TempDir()})
		assert.Error(t, err)
	})

	t.Run("package manager from config", func(t *testing.T) {
		cfg := config.Default()
		cfg.Project.PackageManager = "pnpm"
		cfg.VCS.Backend = config.VCSBackendGoGit

		o, err := NewOrchestrator(OrchestratorOptions{Config: cfg, WorkDir: t.TempDir()})
		require.NoError(t, err)
		assert.Equal(t, "pnpm", o.PackageManager())
		assert.Equal(t, config.VCSBackendGoGit, o.vcs.Name())
	})
}

func TestNextSteps(t *testing.T) {
	want := "Next steps:\n" +
		"1. Navigate to the created directory: cd myapp\n" +
		"2. Install dependencies: npm install\n" +
		"3. Start the app: npm start\n"

	assert.Equal(t, want, NextSteps("myapp", "npm"))
	assert.Contains(t, NextSteps("web", "yarn"), "yarn start")
}
