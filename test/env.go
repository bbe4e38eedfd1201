//go:build e2e

package test

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"note-sync/internal/config"
)

const (
	signUpEndpoint  = "/api/v1/auth/sign-up"
	signOutEndpoint = "/api/v1/auth/sign-out"
	signInEndpoint  = "/api/v1/auth/sign-in"

	meEndpoint         = "/api/v1/me"
	notesEndpoint      = "/api/v1/notes"
	statsEndpoint      = "/api/v1/stats"
	activitiesEndpoint = "/api/v1/activities"
	categoriesEndpoint = "/api/v1/categories"

	msgFailedToCloseResponseBody = "failed to close response body: %v"

	e2eDatabase   = "e2e"
	e2eJWTSecret  = "note-sync-e2e-secret-long-enough-for-hs256-signing"
	bootTimeout   = 90 * time.Second
	healthTimeout = 30 * time.Second
	stderrCap     = 64 << 10
)

// TestEnvironment is a running server backed by a throwaway MongoDB.
type TestEnvironment struct {
	BaseURL string
	Client  *http.Client
}

// cappedBuffer keeps the first stderrCap bytes of server output and drops the rest.
type cappedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room := stderrCap - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// SetupTestEnvironment boots MongoDB and the server with default settings.
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	return SetupTestEnvironmentWithEnv(t, nil)
}

// SetupTestEnvironmentWithEnv boots MongoDB and the server, layering extraEnv
// over the defaults. Everything is torn down through t.Cleanup.
func SetupTestEnvironmentWithEnv(t *testing.T, extraEnv map[string]string) *TestEnvironment {
	t.Helper()

	config.ResetCache()
	t.Cleanup(config.ResetCache)

	ctx, cancel := context.WithTimeout(context.Background(), bootTimeout)
	t.Cleanup(cancel)

	uri := startMongo(ctx, t)
	baseURL := startServer(t, uri, extraEnv)

	return &TestEnvironment{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func startMongo(ctx context.Context, t *testing.T) string {
	t.Helper()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:8.0",
			ExposedPorts: []string{"27017/tcp"},
			Env: map[string]string{
				"MONGO_INITDB_ROOT_USERNAME": "root",
				"MONGO_INITDB_ROOT_PASSWORD": "example",
				"MONGO_INITDB_DATABASE":      e2eDatabase,
			},
			WaitingFor: wait.ForExec([]string{"mongosh", "--quiet", "--eval", "db.adminCommand('ping')"}).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err, "start mongo container")
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "27017")
	require.NoError(t, err)

	return fmt.Sprintf("mongodb://root:example@%s:%s/", host, port.Port())
}

func startServer(t *testing.T, mongoURI string, extraEnv map[string]string) string {
	t.Helper()

	port := freePort(t)
	env := map[string]string{
		"APP_PORT":      strconv.Itoa(port),
		"MONGO_URI":     mongoURI,
		"MONGO_DB_NAME": e2eDatabase,
		"STORE_DRIVER":  "mongo",
		"BCRYPT_COST":   "4",
		"JWT_SECRET":    e2eJWTSecret,
		"LOG_LEVEL":     "warn",
	}
	for k, v := range extraEnv {
		env[k] = v
	}

	var cmd *exec.Cmd
	if bin := os.Getenv("BIN_SERVER"); bin != "" {
		cmd = exec.Command(bin)
	} else {
		cmd = exec.Command("go", "run", "./cmd/server")
		cmd.Dir = ".."
	}
	// own process group so `go run` children die with it
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	stderr := &cappedBuffer{}
	cmd.Stderr = stderr

	require.NoError(t, cmd.Start(), "start server")
	t.Cleanup(func() { stopServer(t, cmd, stderr) })

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	if err := waitHealthy(baseURL, healthTimeout); err != nil {
		t.Logf("server stderr:\n%s", stderr.String())
		require.NoError(t, err)
	}
	return baseURL
}

func stopServer(t *testing.T, cmd *exec.Cmd, stderr *cappedBuffer) {
	if pgid, err := syscall.Getpgid(cmd.Process.Pid); err == nil {
		_ = syscall.Kill(-pgid, syscall.SIGTERM)
	}

	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		<-done
	}

	if t.Failed() {
		t.Logf("server stderr:\n%s", stderr.String())
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func waitHealthy(baseURL string, timeout time.Duration) error {
	probe := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := probe.Get(baseURL + "/healthz")
		if err == nil {
			ok := resp.StatusCode == http.StatusOK
			resp.Body.Close()
			if ok {
				return nil
			}
		}
		time.Sleep(250 * time.Millisecond)
	}
	return fmt.Errorf("server at %s not healthy after %s", baseURL, timeout)
}
