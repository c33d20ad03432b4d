package ecs_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/plus3/wayfarer/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(&Position{X: 1, Y: 2}, &Velocity{DX: 0.5, DY: 0.5}, Score(32))
	assert.NotEqual(t, ecs.EntityId(0), id)
	assert.True(t, storage.Alive(id))
	assert.Equal(t, 1, storage.Len())

	other := storage.Spawn(Position{})
	assert.NotEqual(t, id, other)
}

func TestSpawnPanics(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { storage.Spawn() })
	assert.Panics(t, func() { storage.Spawn(Position{}, Position{}) })
	assert.Panics(t, func() { storage.Spawn(struct{ Unregistered int }{}) })
}

func TestGetComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(&Position{X: 3, Y: 4}, Name{Value: "Test Entity"})

	pos := storage.GetComponent(id, reflect.TypeFor[Position]()).(*Position)
	assert.Equal(t, float32(3), pos.X)
	assert.Equal(t, float32(4), pos.Y)

	name := ecs.ReadComponent[Name](storage, id)
	require.NotNil(t, name)
	assert.Equal(t, "Test Entity", name.Value)

	assert.Nil(t, storage.GetComponent(id, reflect.TypeFor[Velocity]()))
	assert.Nil(t, ecs.ReadComponent[Velocity](storage, id))
	assert.Nil(t, ecs.ReadComponent[Position](storage, ecs.EntityId(999)))
}

func TestComponentPointersAreLive(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{X: 1, Y: 1})

	ecs.ReadComponent[Position](storage, id).X = 42

	assert.Equal(t, float32(42), ecs.ReadComponent[Position](storage, id).X)
}

func TestDeleteEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(&Position{X: 1, Y: 1}, &Health{Current: 100, Max: 100})
	require.NoError(t, storage.Delete(id))

	assert.False(t, storage.Alive(id))
	assert.Nil(t, storage.GetComponent(id, reflect.TypeFor[Position]()))

	err := storage.Delete(id)
	assert.True(t, errors.Is(err, ecs.ErrEntityNotFound))
}

func TestHasComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{}, Health{Current: 1})

	assert.True(t, storage.HasComponent(id, reflect.TypeFor[Position]()))
	assert.True(t, ecs.Has[Health](storage, id))
	assert.False(t, ecs.Has[Velocity](storage, id))
	assert.False(t, ecs.Has[Position](storage, ecs.EntityId(12345)))
}

func TestAddComponentKeepsEntityId(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{X: 5, Y: 6})
	before := storage.ArchetypeOf(id)

	require.NoError(t, storage.AddComponent(id, Velocity{DX: 1, DY: 2}))

	assert.NotSame(t, before, storage.ArchetypeOf(id))
	assert.Equal(t, Position{X: 5, Y: 6}, *ecs.ReadComponent[Position](storage, id))
	assert.Equal(t, Velocity{DX: 1, DY: 2}, *ecs.ReadComponent[Velocity](storage, id))
	assert.Equal(t, 0, before.Len())

	err := storage.AddComponent(id, Velocity{})
	assert.True(t, errors.Is(err, ecs.ErrComponentAlreadyOnEntity))

	err = storage.AddComponent(ecs.EntityId(999), Velocity{})
	assert.True(t, errors.Is(err, ecs.ErrEntityNotFound))
}

func TestRemoveComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 3, DY: 4}, Score(7))

	require.NoError(t, storage.RemoveComponent(id, reflect.TypeFor[Velocity]()))

	assert.True(t, storage.Alive(id))
	assert.False(t, ecs.Has[Velocity](storage, id))
	assert.Equal(t, Position{X: 1, Y: 2}, *ecs.ReadComponent[Position](storage, id))
	assert.Equal(t, Score(7), *ecs.ReadComponent[Score](storage, id))

	err := storage.RemoveComponent(id, reflect.TypeFor[Velocity]())
	assert.True(t, errors.Is(err, ecs.ErrComponentNotOnEntity))
}

func TestRemoveLastComponentDeletesEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{})

	require.NoError(t, storage.RemoveComponent(id, reflect.TypeFor[Position]()))

	assert.False(t, storage.Alive(id))
	assert.Equal(t, 0, storage.Len())
}

func TestSlotReuseDoesNotLeakIds(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	first := storage.Spawn(Position{X: 1})
	require.NoError(t, storage.Delete(first))

	second := storage.Spawn(Position{X: 2})

	assert.NotEqual(t, first, second)
	assert.Nil(t, ecs.ReadComponent[Position](storage, first))
	assert.Equal(t, float32(2), ecs.ReadComponent[Position](storage, second).X)
}

func TestCompact(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	var ids []ecs.EntityId
	for i := 0; i < 200; i++ {
		ids = append(ids, storage.Spawn(Position{X: float32(i)}))
	}
	for i := 0; i < 200; i += 2 {
		require.NoError(t, storage.Delete(ids[i]))
	}

	storage.Compact()

	for i := 1; i < 200; i += 2 {
		pos := ecs.ReadComponent[Position](storage, ids[i])
		require.NotNil(t, pos, "entity %d", i)
		assert.Equal(t, float32(i), pos.X)
	}
	assert.Equal(t, 100, storage.Len())

	id := storage.Spawn(Position{X: -1})
	assert.Equal(t, float32(-1), ecs.ReadComponent[Position](storage, id).X)
}

func TestGetArchetype(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.Spawn(Position{}, Velocity{})

	a := storage.GetArchetype(reflect.TypeFor[Velocity](), reflect.TypeFor[Position]())
	require.NotNil(t, a)
	assert.Equal(t, 1, a.Len())
	assert.Nil(t, storage.GetArchetype(reflect.TypeFor[Health]()))
}

func TestStorageStats(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[int](registry)
	ecs.RegisterComponent[string](registry)
	ecs.RegisterComponent[float64](registry)
	storage := ecs.NewStorage(registry)

	stats := storage.CollectStats()
	assert.Equal(t, 0, stats.ArchetypeCount)
	assert.Equal(t, 0, stats.TotalEntityCount)
	assert.Equal(t, 0, stats.SingletonCount)

	storage.Spawn(42, "hello")
	storage.Spawn(100, "world")
	storage.Spawn(200.0, "test")
	ecs.NewSingleton[float64](storage, 3.14)
	ecs.NewSingleton[string](storage, "singleton")

	stats = storage.CollectStats()
	assert.Equal(t, 2, stats.ArchetypeCount)
	assert.Equal(t, 3, stats.TotalEntityCount)
	assert.Equal(t, 2, stats.SingletonCount)
	assert.Equal(t, []string{"float64", "string"}, stats.SingletonTypes)
	require.Len(t, stats.ArchetypeBreakdown, 2)
	assert.Equal(t, 2, stats.ArchetypeBreakdown[0].EntityCount)
	assert.Equal(t, 1, stats.ArchetypeBreakdown[1].EntityCount)
}
