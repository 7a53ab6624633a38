package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdleRunsInOrder(t *testing.T) {
	q := NewIdle()
	var got []int
	for i := range 3 {
		q.Schedule(func() { got = append(got, i) })
	}
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 3, q.Drain())
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Drain())
}

func TestIdleCancel(t *testing.T) {
	q := NewIdle()
	ran := false
	id := q.Schedule(func() { ran = true })
	assert.True(t, q.Cancel(id))
	assert.False(t, q.Cancel(id))
	assert.Equal(t, 0, q.Drain())
	assert.False(t, ran)
	assert.False(t, q.Cancel(TaskID(99)))
}

func TestIdleDefersNestedSchedules(t *testing.T) {
	q := NewIdle()
	var got []string
	q.Schedule(func() {
		got = append(got, "outer")
		q.Schedule(func() { got = append(got, "inner") })
	})
	assert.Equal(t, 1, q.Drain())
	assert.Equal(t, []string{"outer"}, got)
	assert.Equal(t, 1, q.Drain())
	assert.Equal(t, []string{"outer", "inner"}, got)
}
