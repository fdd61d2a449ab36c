package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/conduit-lang/mapexport/internal/cli/config"
)

const membersYAML = `
class: App\Entity\User
table: {name: users}
properties:
  - {kind: field, name: id, type: integer, tableName: users, id: true, generator: {type: IDENTITY}}
  - {kind: field, name: login, type: string, tableName: users, length: 64}
  - kind: manyToMany
    name: groups
    targetEntity: App\Entity\Group
    inversedBy: users
    joinTable:
      name: users_groups
      joinColumns: [{name: user_id, referencedColumnName: id}]
      inverseJoinColumns: [{name: group_id, referencedColumnName: id}]
---
class: App\Entity\Group
table: {name: groups}
properties:
  - {kind: field, name: id, type: integer, tableName: groups, id: true}
  - {kind: manyToMany, name: users, targetEntity: App\Entity\User, mappedBy: groups}
`

type confirmStub struct {
	answer bool
	calls  []string
}

func (c *confirmStub) confirm(message string) (bool, error) {
	c.calls = append(c.calls, message)
	return c.answer, nil
}

func newTestEnv(t *testing.T) (*Env, *confirmStub) {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "members.yml", []byte(membersYAML), 0644))

	stub := &confirmStub{}
	env := &Env{
		Fs: fs,
		Config: &config.Config{
			Output:   config.OutputConfig{Dir: "build/mapping", Extension: ".mapping"},
			Registry: config.RegistryConfig{Driver: "sqlite3"},
			Log:      config.LogConfig{Level: "info"},
		},
		Logger:  zap.NewNop(),
		Confirm: stub.confirm,
	}

	return env, stub
}

func run(t *testing.T, env *Env, args ...string) (string, string, error) {
	t.Helper()

	t.Cleanup(func() { color.NoColor = false })

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(env)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(path, content string) error {
	return afero.WriteFile(afero.NewOsFs(), path, []byte(content), 0644)
}
