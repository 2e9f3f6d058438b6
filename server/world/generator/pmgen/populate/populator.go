package populate

import (
	"github.com/nightforge/dragonfly/server/world"
	"github.com/nightforge/dragonfly/server/world/chunk"
	"github.com/nightforge/dragonfly/server/world/generator/pmgen/rand"
)

type Populator interface {
	Populate(w *world.World, pos world.ChunkPos, chunk *chunk.Chunk, r *rand.Random)
}
