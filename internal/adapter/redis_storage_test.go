package adapter

import (
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

const prefixedKey = "quizforge:ratelimit:window:127.0.0.1"

func TestRedisStorage_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	storage := NewRedisStorage(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectGet(prefixedKey).SetVal("3")
		val, err := storage.Get("127.0.0.1")
		assert.NoError(t, err)
		assert.Equal(t, []byte("3"), val)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingKeyIsNotAnError", func(t *testing.T) {
		mock.ExpectGet(prefixedKey).SetErr(redis.Nil)
		val, err := storage.Get("127.0.0.1")
		assert.NoError(t, err)
		assert.Nil(t, val)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RedisError", func(t *testing.T) {
		redisErr := errors.New("some redis error")
		mock.ExpectGet(prefixedKey).SetErr(redisErr)
		val, err := storage.Get("127.0.0.1")
		assert.ErrorIs(t, err, redisErr)
		assert.Nil(t, val)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyKey", func(t *testing.T) {
		val, err := storage.Get("")
		assert.NoError(t, err)
		assert.Nil(t, val)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisStorage_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	storage := NewRedisStorage(db)
	value := []byte("payload")
	expiration := time.Minute

	t.Run("Success", func(t *testing.T) {
		mock.ExpectSet(prefixedKey, value, expiration).SetVal("OK")
		err := storage.Set("127.0.0.1", value, expiration)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RedisError", func(t *testing.T) {
		redisErr := errors.New("set failed")
		mock.ExpectSet(prefixedKey, value, expiration).SetErr(redisErr)
		err := storage.Set("127.0.0.1", value, expiration)
		assert.ErrorIs(t, err, redisErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyKeyOrValueIsIgnored", func(t *testing.T) {
		assert.NoError(t, storage.Set("", value, expiration))
		assert.NoError(t, storage.Set("127.0.0.1", nil, expiration))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisStorage_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	storage := NewRedisStorage(db)

	mock.ExpectDel(prefixedKey).SetVal(1)
	assert.NoError(t, storage.Delete("127.0.0.1"))
	assert.NoError(t, mock.ExpectationsWereMet())

	redisErr := errors.New("del failed")
	mock.ExpectDel(prefixedKey).SetErr(redisErr)
	assert.ErrorIs(t, storage.Delete("127.0.0.1"), redisErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStorage_Reset(t *testing.T) {
	match := "quizforge:ratelimit:window:*"

	t.Run("DeletesEveryScannedBatch", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		storage := NewRedisStorage(db)

		mock.ExpectScan(0, match, scanBatchSize).SetVal([]string{"quizforge:ratelimit:window:a", "quizforge:ratelimit:window:b"}, 42)
		mock.ExpectDel("quizforge:ratelimit:window:a", "quizforge:ratelimit:window:b").SetVal(2)
		mock.ExpectScan(42, match, scanBatchSize).SetVal([]string{"quizforge:ratelimit:window:c"}, 0)
		mock.ExpectDel("quizforge:ratelimit:window:c").SetVal(1)

		assert.NoError(t, storage.Reset())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyKeyspace", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		storage := NewRedisStorage(db)

		mock.ExpectScan(0, match, scanBatchSize).SetVal([]string{}, 0)

		assert.NoError(t, storage.Reset())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ScanError", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		storage := NewRedisStorage(db)

		scanErr := errors.New("scan failed")
		mock.ExpectScan(0, match, scanBatchSize).SetErr(scanErr)

		assert.ErrorIs(t, storage.Reset(), scanErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
