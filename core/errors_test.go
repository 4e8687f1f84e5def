package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Parallel()

	t.Run("NewError", func(t *testing.T) {
		t.Parallel()

		err1 := errors.New("error 1")
		err2 := errors.New("error 2")
		e := NewError("base message", err1, err2)

		assert.Equal(t, "base message", e.Message)
		assert.Equal(t, []string{"error 1", "error 2"}, e.Err)
	})

	t.Run("Error method", func(t *testing.T) {
		t.Parallel()

		e := NewError("test", errors.New("internal"))
		got := e.Error()
		assert.Contains(t, got, "test")
		assert.Contains(t, got, "internal")
	})

	t.Run("ErrorFrom", func(t *testing.T) {
		t.Parallel()

		e := ErrorFrom(errors.New("connection refused"))
		assert.Equal(t, "connection refused", e.Message)
		assert.Empty(t, e.Err)
		assert.JSONEq(t, `{"message":"connection refused"}`, e.Error())

		assert.Empty(t, ErrorFrom(nil).Message)
	})

	t.Run("NewError skips nil errors", func(t *testing.T) {
		t.Parallel()

		e := NewError("parameter 'id' is required", nil)
		assert.Empty(t, e.Err)
		assert.JSONEq(t, `{"message":"parameter 'id' is required"}`, e.Error())
	})
}
