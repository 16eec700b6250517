package indexer

import (
	"context"
	"fmt"
	"testing"

	"lendex/core"
	"lendex/store/memory"

	"github.com/stretchr/testify/assert"
)

func TestBatchChangeset(t *testing.T) {
	b := newBatch(context.Background(), memory.New(), &Config{}, 1, baseTime)

	b.Save(&core.User{ID: alice})
	b.Save(&core.User{ID: bob})
	b.Delete(&core.User{ID: alice})
	b.Save(&core.User{ID: bob, CreatedTime: baseTime})

	changes := b.Changeset()
	if assert.Len(t, changes.Saves, 1) {
		assert.Equal(t, baseTime, changes.Saves[0].(*core.User).CreatedTime)
	}
	assert.Len(t, changes.Deletes, 1)
	assert.Equal(t, []string{
		core.EntityKey(&core.User{ID: alice}),
		core.EntityKey(&core.User{ID: bob}),
	}, b.order)

	t.Run("many entities keep first touch order", func(t *testing.T) {
		b := newBatch(context.Background(), memory.New(), &Config{}, 1, baseTime)
		for i := 0; i < 5000; i++ {
			b.Save(&core.User{ID: fmt.Sprintf("0x%040x", i)})
			b.Save(&core.User{ID: fmt.Sprintf("0x%040x", i), CreatedTime: int64(i)})
		}

		changes := b.Changeset()
		assert.Len(t, changes.Saves, 5000)
		assert.Len(t, b.order, 5000)
		assert.Equal(t, core.EntityKey(&core.User{ID: fmt.Sprintf("0x%040x", 0)}), b.order[0])
	})
}
