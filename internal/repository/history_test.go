package repository

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestHistoryRepository_Save(t *testing.T) {
	ctx, st := suite.NewSQLite(t)

	historyRepo := NewHistoryRepository(st.Connection)

	// Given: a finished game
	record := &entity.HistoryRecord{
		Player1:   "alice",
		Player2:   "AI",
		Result:    "AI wins!",
		Timestamp: baseTime,
		Moves:     "0:0:X,1:1:O",
	}

	// When: Save is called
	err := historyRepo.Save(ctx, record)

	// Then: the record gets an ID and can be read back
	require.NoError(t, err)
	assert.Positive(t, record.ID)

	records, err := historyRepo.LoadByPlayer(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, *record, records[0])
}

func TestHistoryRepository_LoadByPlayer(t *testing.T) {
	t.Run("Newest first, ties by id", func(t *testing.T) {
		ctx, st := suite.NewSQLite(t)

		historyRepo := NewHistoryRepository(st.Connection)

		// Given: three games, two of them at the same time
		older := &entity.HistoryRecord{Player1: "alice", Player2: "bob", Result: "Draw", Timestamp: baseTime, Moves: "a"}
		first := &entity.HistoryRecord{Player1: "bob", Player2: "alice", Result: "Player X wins!", Timestamp: baseTime.Add(time.Minute), Moves: "b"}
		second := &entity.HistoryRecord{Player1: "alice", Player2: "AI", Result: "AI wins!", Timestamp: baseTime.Add(time.Minute), Moves: "c"}
		stranger := &entity.HistoryRecord{Player1: "carol", Player2: "dave", Result: "Draw", Timestamp: baseTime.Add(time.Hour), Moves: "d"}

		for _, record := range []*entity.HistoryRecord{older, first, second, stranger} {
			require.NoError(t, historyRepo.Save(ctx, record))
		}

		// When: alice's history is loaded
		records, err := historyRepo.LoadByPlayer(ctx, "alice")

		// Then: games where alice sat on either side come back newest first
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, []int64{second.ID, first.ID, older.ID}, []int64{records[0].ID, records[1].ID, records[2].ID})
	})

	t.Run("Unknown player has no history", func(t *testing.T) {
		ctx, st := suite.NewSQLite(t)

		historyRepo := NewHistoryRepository(st.Connection)

		records, err := historyRepo.LoadByPlayer(ctx, "nobody")

		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestHistoryRepository_GetMoves(t *testing.T) {
	t.Run("GetMoves_Success", func(t *testing.T) {
		ctx, st := suite.NewSQLite(t)

		historyRepo := NewHistoryRepository(st.Connection)

		record := &entity.HistoryRecord{Player1: "alice", Player2: "bob", Result: "Draw", Timestamp: baseTime, Moves: "0:0:X"}
		require.NoError(t, historyRepo.Save(ctx, record))

		moves, err := historyRepo.GetMoves(ctx, record.ID)

		require.NoError(t, err)
		assert.Equal(t, "0:0:X", moves)
	})

	t.Run("GetMoves_NotFound", func(t *testing.T) {
		ctx, st := suite.NewSQLite(t)

		historyRepo := NewHistoryRepository(st.Connection)

		_, err := historyRepo.GetMoves(ctx, 9999999)

		require.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestHistoryRepository_Delete(t *testing.T) {
	t.Run("Delete_Success", func(t *testing.T) {
		ctx, st := suite.NewSQLite(t)

		historyRepo := NewHistoryRepository(st.Connection)

		// Given: a saved game
		record := &entity.HistoryRecord{Player1: "alice", Player2: "bob", Result: "Draw", Timestamp: baseTime, Moves: "0:0:X"}
		require.NoError(t, historyRepo.Save(ctx, record))

		// When: Delete is called with its ID
		err := historyRepo.Delete(ctx, record.ID)

		// Then: the game is gone
		require.NoError(t, err)

		_, err = historyRepo.GetMoves(ctx, record.ID)
		require.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("Delete_NotFound", func(t *testing.T) {
		ctx, st := suite.NewSQLite(t)

		historyRepo := NewHistoryRepository(st.Connection)

		err := historyRepo.Delete(ctx, 9999999)

		require.ErrorIs(t, err, apperror.ErrNotFound)
	})
}
