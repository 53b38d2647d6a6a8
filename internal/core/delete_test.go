package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokrova/contentctl/internal/github"
	"github.com/pokrova/contentctl/internal/models"
)

func TestDelete_RemovesDocumentAndImages(t *testing.T) {
	freezeClock(t, 1700000000000)
	gw := github.NewMockGateway()
	gw.AddFile("main", "data/articles/feast-2025/index.json", []byte(`[{"language":"uk"}]`))
	gw.AddFile("main", "data/articles/feast-2025/images/a.jpg", []byte("aaa"))
	gw.AddFile("main", "data/articles/feast-2025/images/b.jpg", []byte("bbb"))

	var steps []string
	result, err := Delete(context.Background(), gw, models.Articles, "feast-2025", "", func(s string) {
		steps = append(steps, s)
	})
	require.NoError(t, err)

	branch := "content/articles/feast-2025-1700000000000"
	assert.Equal(t, branch, result.Branch)
	assert.ElementsMatch(t, []string{
		branch + "\x00" + "data/articles/feast-2025/index.json",
		branch + "\x00" + "data/articles/feast-2025/images/a.jpg",
		branch + "\x00" + "data/articles/feast-2025/images/b.jpg",
	}, gw.Deleted)

	require.Len(t, gw.PRs, 1)
	assert.Equal(t, "Content: delete article feast-2025", gw.PRs[0].Title)
	assert.Equal(t, "Delete via admin", gw.PRs[0].Body)
	assert.Equal(t, branch, gw.PRs[0].Head)

	assert.Equal(t, "PR #1 created", steps[len(steps)-1])
}

func TestDelete_RecordWithoutImages(t *testing.T) {
	freezeClock(t, 1700000000000)
	gw := github.NewMockGateway()
	gw.AddFile("main", "data/schedule/liturgy-sunday/index.json", []byte(`[{"language":"uk"}]`))

	result, err := Delete(context.Background(), gw, models.Schedule, "liturgy-sunday", "", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		result.Branch + "\x00" + "data/schedule/liturgy-sunday/index.json",
	}, gw.Deleted)
	require.Len(t, gw.PRs, 1)
	assert.Equal(t, "Content: delete schedule liturgy-sunday", gw.PRs[0].Title)
}

func TestDelete_ImageFailureAbortsBeforePR(t *testing.T) {
	freezeClock(t, 1700000000000)
	gw := github.NewMockGateway()
	gw.AddFile("main", "data/articles/feast-2025/images/a.jpg", []byte("aaa"))
	gw.FailOn = "delete"

	_, err := Delete(context.Background(), gw, models.Articles, "feast-2025", "", nil)
	require.Error(t, err)
	assert.Empty(t, gw.PRs)
}
