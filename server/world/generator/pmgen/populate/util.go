package populate

import (
	"github.com/nightforge/dragonfly/server/block/cube"
	"github.com/nightforge/dragonfly/server/world"
)

func inChunk(pos cube.Pos, chunkPos world.ChunkPos) bool {
	return int32(pos[0]>>4) == chunkPos[0] && int32(pos[2]>>4) == chunkPos[1]
}

var setOpts = &world.SetOpts{
	DisableBlockUpdates:       true,
	DisableLiquidDisplacement: true,
}
