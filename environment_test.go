package benchwatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvironment(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("InvalidConf", func(t *testing.T) {
		_, err := NewEnvironment(ctx, t.Name(), &Configuration{})
		assert.Error(t, err)
	})
	t.Run("LocalOnly", func(t *testing.T) {
		env, err := NewEnvironment(ctx, t.Name(), &Configuration{
			MongoDBURI:         "mongodb://localhost:27017",
			DatabaseName:       "benchwatch_test",
			NumWorkers:         2,
			DisableRemoteQueue: true,
		})
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, env.Close(ctx))
		}()

		assert.NotNil(t, env.GetClient())
		assert.NotNil(t, env.GetDB())
		assert.NotNil(t, env.GetLocalQueue())
		assert.Nil(t, env.GetRemoteQueue())
	})
	t.Run("WithRemoteQueue", func(t *testing.T) {
		env, err := NewEnvironment(ctx, t.Name(), &Configuration{
			MongoDBURI:   "mongodb://localhost:27017",
			DatabaseName: "benchwatch_test",
			NumWorkers:   2,
		})
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, env.Close(ctx))
		}()

		assert.NotNil(t, env.GetRemoteQueue())
	})
}
