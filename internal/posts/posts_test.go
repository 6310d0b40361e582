package posts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/chepyr/taskflow/internal/db"
	"github.com/chepyr/taskflow/internal/models"
	"github.com/chepyr/taskflow/internal/shared"
	"github.com/chepyr/taskflow/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPosts(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()
	author := &models.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com", PasswordHash: "h", LastSeen: now, CreatedAt: now}
	require.NoError(t, db.NewUserRepository(conn).Create(ctx, author))

	svc := NewService(conn)
	tick := now
	svc.now = func() time.Time { tick = tick.Add(time.Second); return tick }

	_, err := svc.CreatePost(ctx, author.ID, "")
	require.ErrorIs(t, err, shared.ErrFieldTooShort)
	_, err = svc.CreatePost(ctx, author.ID, strings.Repeat("p", MaxBodyLen+1))
	require.ErrorIs(t, err, shared.ErrFieldTooLong)

	for i := range 7 {
		_, err := svc.CreatePost(ctx, author.ID, strings.Repeat("p", i+1))
		require.NoError(t, err)
	}

	first, err := svc.ListByUser(ctx, author.ID, 1)
	require.NoError(t, err)
	require.Len(t, first.Items, PageSize)
	require.True(t, first.HasNext)
	require.Equal(t, "ppppppp", first.Items[0].Body)

	second, err := svc.ListByUser(ctx, author.ID, 2)
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	require.False(t, second.HasNext)
	require.True(t, second.HasPrev)
}
