package recipe

import "github.com/nightforge/dragonfly/server/item"

func init() {
	Register(NewShapeless([]Item{
		item.NewStack(item.BreezeRod{}, 1),
		item.NewStack(item.HeavyCore{}, 1),
	}, item.NewStack(item.Mace{}, 1), "crafting_table"))
}
