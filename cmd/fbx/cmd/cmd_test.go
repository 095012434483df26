package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/haxelion/fbx3d/internal/fbxtest"
	"github.com/haxelion/fbx3d/pkg/api"
	"github.com/haxelion/fbx3d/pkg/catalog"
	"github.com/haxelion/fbx3d/pkg/config"
	"github.com/haxelion/fbx3d/pkg/di"
	"github.com/haxelion/fbx3d/pkg/query"
)

type cliEnv struct {
	dir        string
	configPath string
	scene      string
}

// setupCLI writes a config whose catalog lives in a temp dir, a scene file, and a
// fresh container.
func setupCLI(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Catalog.Dir = filepath.Join(dir, "catalog")
	cfg.Logging.Level = "error"
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, configPath))

	scene := filepath.Join(dir, "scene.fbx")
	require.NoError(t, os.WriteFile(scene, sceneBytes(), 0600))

	c := di.NewContainer()
	c.SetRegistry(prometheus.NewRegistry())
	SetContainer(c)
	t.Cleanup(func() {
		_ = c.Close()
		SetContainer(nil)
	})

	return &cliEnv{dir: dir, configPath: configPath, scene: scene}
}

func sceneBytes() []byte {
	return fbxtest.EncodeDefault(
		fbxtest.Node{Name: "FBXHeaderExtension", Children: []fbxtest.Node{
			{Name: "FBXVersion", Props: []fbxtest.Prop{fbxtest.Int32(7400)}},
		}},
		fbxtest.Node{Name: "Objects", Children: []fbxtest.Node{
			{Name: "Geometry", Props: []fbxtest.Prop{fbxtest.Int64(10), fbxtest.String("Cube"), fbxtest.String("Mesh")},
				Children: []fbxtest.Node{
					{Name: "Vertices", Props: []fbxtest.Prop{fbxtest.Compressed(fbxtest.Float64Array(0, 1, 2, 3, 4, 5, 6, 7, 8, 9))}},
				}},
			{Name: "Model", Props: []fbxtest.Prop{fbxtest.Int64(11), fbxtest.String("Cube"), fbxtest.String("Mesh")}},
			{Name: "Model", Props: []fbxtest.Prop{fbxtest.Int64(12), fbxtest.String("Lamp"), fbxtest.String("Light")}},
		}},
	)
}

// run executes the root command with a clean flag state and returns stdout, stderr.
func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append(args, "--config", e.configPath))
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestDumpCommand(t *testing.T) {
	env := setupCLI(t)

	t.Run("json", func(t *testing.T) {
		out, _, err := env.run(t, "dump", env.scene, "--max-array", "3")
		require.NoError(t, err)

		var tree []query.TreeNode
		require.NoError(t, json.Unmarshal([]byte(out), &tree))
		require.Len(t, tree, 2)
		assert.Equal(t, "FBXHeaderExtension", tree[0].Name)
		assert.Equal(t, "Objects", tree[1].Name)

		vertices := tree[1].Children[0].Children[0].Properties[0]
		assert.Equal(t, 10, vertices.Length)
		assert.True(t, vertices.Truncated)
		assert.Len(t, vertices.Value, 3)
	})

	t.Run("yaml with path", func(t *testing.T) {
		out, _, err := env.run(t, "dump", env.scene, "--format", "yaml", "--path", "Objects/Model")
		require.NoError(t, err)

		var tree []query.TreeNode
		require.NoError(t, yaml.Unmarshal([]byte(out), &tree))
		require.Len(t, tree, 2)
		assert.Equal(t, "Model", tree[0].Name)
		assert.Equal(t, "Lamp", tree[1].Properties[1].Value)
	})

	t.Run("no match prints empty list", func(t *testing.T) {
		out, _, err := env.run(t, "dump", env.scene, "--path", "Nope")
		require.NoError(t, err)
		assert.Equal(t, "[]\n", out)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, _, err := env.run(t, "dump", env.scene, "--format", "xml")
		assert.ErrorContains(t, err, "invalid --format")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := env.run(t, "dump", filepath.Join(env.dir, "missing.fbx"))
		assert.ErrorContains(t, err, "failed to read")
	})

	t.Run("corrupt file", func(t *testing.T) {
		bad := filepath.Join(env.dir, "bad.fbx")
		require.NoError(t, os.WriteFile(bad, []byte("not an fbx file at all, just text"), 0600))
		_, _, err := env.run(t, "dump", bad)
		assert.ErrorContains(t, err, "failed to decode")
	})
}

func TestStatsCommand(t *testing.T) {
	env := setupCLI(t)

	t.Run("text", func(t *testing.T) {
		out, _, err := env.run(t, "stats", env.scene)
		require.NoError(t, err)
		assert.Contains(t, out, "Version:")
		assert.Contains(t, out, "7400")
		assert.Contains(t, out, "Nodes:")
		assert.Contains(t, out, "Model:")
		assert.Contains(t, out, "[]float64:")
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := env.run(t, "stats", env.scene, "-f", "json")
		require.NoError(t, err)

		var report catalog.Report
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, 7, report.Stats.Nodes)
		assert.Equal(t, 2, report.Stats.Roots)
		assert.Equal(t, int64(10), report.Stats.ArrayElements)
	})
}

func TestQueryCommand(t *testing.T) {
	env := setupCLI(t)

	t.Run("path", func(t *testing.T) {
		out, stderr, err := env.run(t, "query", env.scene, "Objects/Model")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, `Model: 11 "Cube" "Mesh"`, lines[0])
		assert.Contains(t, stderr, "2 match(es)")
	})

	t.Run("wildcard with where", func(t *testing.T) {
		out, _, err := env.run(t, "query", env.scene, "Objects/*", "--where", "2=Mesh")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "Geometry:"))
		assert.Contains(t, lines[0], "{1 children}")
		assert.True(t, strings.HasPrefix(lines[1], "Model: 11"))
	})

	t.Run("multiple where", func(t *testing.T) {
		out, _, err := env.run(t, "query", env.scene, "Objects/*", "--where", "2=Mesh", "--where", "0>10")
		require.NoError(t, err)
		assert.Equal(t, `Model: 11 "Cube" "Mesh"`, strings.TrimSpace(out))
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := env.run(t, "query", env.scene, "Objects/Geometry/Vertices", "-f", "json", "--max-array", "0")
		require.NoError(t, err)
		var tree []query.TreeNode
		require.NoError(t, json.Unmarshal([]byte(out), &tree))
		require.Len(t, tree, 1)
		assert.Len(t, tree[0].Properties[0].Value, 10)
	})

	t.Run("bad condition", func(t *testing.T) {
		_, _, err := env.run(t, "query", env.scene, "Objects", "--where", "x=1")
		assert.Error(t, err)
	})
}

func TestInitCommand(t *testing.T) {
	SetContainer(di.NewContainer())
	t.Cleanup(func() { SetContainer(nil) })

	dir := t.TempDir()
	configPath := filepath.Join(dir, "conf", "config.yaml")
	catalogDir := filepath.Join(dir, "reports")

	t.Run("writes config", func(t *testing.T) {
		cfg, err := initializeConfig(configPath, catalogDir, false)
		require.NoError(t, err)
		assert.Equal(t, catalogDir, cfg.Catalog.Dir)
		assert.DirExists(t, catalogDir)

		loaded, err := config.LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, cfg, loaded)
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		_, err := initializeConfig(configPath, catalogDir, false)
		assert.ErrorContains(t, err, "already exists")
	})

	t.Run("force overwrites", func(t *testing.T) {
		_, err := initializeConfig(configPath, filepath.Join(dir, "other"), true)
		require.NoError(t, err)

		loaded, err := config.LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "other"), loaded.Catalog.Dir)
	})

	t.Run("via command", func(t *testing.T) {
		env := &cliEnv{configPath: filepath.Join(dir, "cmd.yaml")}
		out, _, err := env.run(t, "init", "--catalog-dir", filepath.Join(dir, "cmd-catalog"))
		require.NoError(t, err)
		assert.Contains(t, out, "Configuration written to")
		assert.True(t, config.ConfigExists(env.configPath))
	})
}

func TestCatalogCommands(t *testing.T) {
	env := setupCLI(t)

	out, _, err := env.run(t, "catalog", "add", env.scene)
	require.NoError(t, err)
	fields := strings.Fields(out)
	require.Len(t, fields, 2)
	id, err := ksuid.Parse(fields[0])
	require.NoError(t, err)
	assert.Equal(t, env.scene, fields[1])

	t.Run("list", func(t *testing.T) {
		out, _, err := env.run(t, "catalog", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "SOURCE")
		assert.Contains(t, out, id.String())
	})

	t.Run("list json", func(t *testing.T) {
		out, _, err := env.run(t, "catalog", "list", "-f", "json")
		require.NoError(t, err)
		var reports []catalog.Report
		require.NoError(t, json.Unmarshal([]byte(out), &reports))
		require.Len(t, reports, 1)
		assert.Equal(t, id, reports[0].ID)
	})

	t.Run("list by source", func(t *testing.T) {
		out, _, err := env.run(t, "catalog", "list", "--source", env.scene, "-f", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, id.String())

		out, _, err = env.run(t, "catalog", "list", "--source", "other.fbx", "-f", "json")
		require.NoError(t, err)
		assert.Equal(t, "[]\n", out)
	})

	t.Run("show", func(t *testing.T) {
		out, _, err := env.run(t, "catalog", "show", id.String())
		require.NoError(t, err)
		assert.Contains(t, out, id.String())
		assert.Contains(t, out, "7400")
	})

	t.Run("show invalid id", func(t *testing.T) {
		_, _, err := env.run(t, "catalog", "show", "nope")
		assert.ErrorContains(t, err, "invalid report id")
	})

	t.Run("add with failures", func(t *testing.T) {
		bad := filepath.Join(env.dir, "bad.fbx")
		require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0600))
		out, stderr, err := env.run(t, "catalog", "add", bad, env.scene)
		assert.ErrorContains(t, err, "1 of 2 file(s) failed")
		assert.Contains(t, stderr, "bad.fbx")
		assert.Contains(t, out, env.scene)
	})

	t.Run("delete", func(t *testing.T) {
		out, _, err := env.run(t, "catalog", "delete", id.String())
		require.NoError(t, err)
		assert.Contains(t, out, "Deleted")

		_, _, err = env.run(t, "catalog", "show", id.String())
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})
}

type recordingStarter struct {
	config api.ServerConfig
	store  api.ReportStore
	called bool
}

func (s *recordingStarter) StartServer(ctx context.Context, store api.ReportStore, config api.ServerConfig, metrics *api.Metrics, logger *zap.Logger) error {
	s.called = true
	s.config = config
	s.store = store
	return nil
}

type recordingFactory struct{ starter *recordingStarter }

func (f recordingFactory) CreateServerStarter() api.ServerStarter { return f.starter }

func TestServeCommand(t *testing.T) {
	env := setupCLI(t)
	starter := &recordingStarter{}
	container.SetServerFactory(recordingFactory{starter: starter})

	_, _, err := env.run(t, "serve", "--port", "9123", "--bind", "0.0.0.0")
	require.NoError(t, err)

	require.True(t, starter.called)
	assert.Equal(t, 9123, starter.config.Port)
	assert.Equal(t, "0.0.0.0", starter.config.Bind)
	assert.Equal(t, int64(256<<20), starter.config.MaxUploadBytes)
	assert.NotEmpty(t, starter.config.DecoderOptions)
	assert.NotNil(t, starter.store)
}

func TestRootCommand_MissingConfig(t *testing.T) {
	env := setupCLI(t)
	env.configPath = filepath.Join(env.dir, "missing.yaml")

	_, _, err := env.run(t, "stats", env.scene)
	assert.ErrorContains(t, err, "config file does not exist")
}

func TestRootCommand_NoContainer(t *testing.T) {
	env := setupCLI(t)
	SetContainer(nil)

	_, _, err := env.run(t, "stats", env.scene)
	assert.ErrorContains(t, err, "dependency container not initialized")
}
