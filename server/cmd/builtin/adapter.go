package builtin

import (
	"iter"
	"time"

	"github.com/nightforge/dragonfly/server"
	"github.com/nightforge/dragonfly/server/player"
	"github.com/nightforge/dragonfly/server/world"
)

type serverAdapter interface {
	Players(tx *world.Tx) iter.Seq[*player.Player]
	MaxPlayerCount() int
	Close() error
	World() *world.World
	StartTime() time.Time
	Plugins() []server.PluginInfo
	EnablePlugin(path string) (server.PluginInfo, error)
	DisablePlugin(name string) (server.PluginInfo, error)
	ReloadPlugin(name string) (server.PluginInfo, error)
	PluginsEnabled() bool
}
