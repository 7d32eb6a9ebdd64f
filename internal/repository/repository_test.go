package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/game-catalog/internal/database/dbtest"
	"github.com/iliyamo/game-catalog/internal/model"
	"github.com/iliyamo/game-catalog/internal/repository"
)

func strPtr(s string) *string { return &s }

func date(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func titles(games []*model.Game) []string {
	out := make([]string, 0, len(games))
	for _, g := range games {
		out = append(out, g.Title)
	}
	return out
}

func TestCategoryRepo_CreateGetList(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCategoryRepo(dbtest.New(t))

	empty, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	action := &model.Category{Name: "Action", Description: strPtr("Fast games")}
	require.NoError(t, repo.Create(ctx, action))
	puzzle := &model.Category{Name: "Puzzle"}
	require.NoError(t, repo.Create(ctx, puzzle))
	assert.NotZero(t, action.ID)

	got, err := repo.GetByID(ctx, action.ID)
	require.NoError(t, err)
	assert.Equal(t, "Action", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, "Fast games", *got.Description)

	got, err = repo.GetByID(ctx, puzzle.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Description)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []uint64{action.ID, puzzle.ID}, []uint64{all[0].ID, all[1].ID})

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCategoryRepo_SearchAndUpdate(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := repository.NewCategoryRepo(db)
	id := dbtest.SeedCategory(t, db, "Action")
	dbtest.SeedCategory(t, db, "Adventure")
	dbtest.SeedCategory(t, db, "Puzzle")

	found, err := repo.Search(ctx, repository.CategoryFilter{Query: "a"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.Search(ctx, repository.CategoryFilter{Name: "Puzzle"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Puzzle", found[0].Name)

	require.NoError(t, repo.Update(ctx, &model.Category{ID: id, Name: "Arcade"}))
	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Arcade", got.Name)

	err = repo.Update(ctx, &model.Category{ID: 404, Name: "Ghost"})
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)
}

func TestCategoryRepo_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	categories := repository.NewCategoryRepo(db)
	games := repository.NewGameRepo(db)

	action := dbtest.SeedCategory(t, db, "Action")
	other := dbtest.SeedCategory(t, db, "Other")
	alpha := dbtest.SeedGame(t, db, action, "Alpha", "2023-01-01")
	beta := dbtest.SeedGame(t, db, action, "Beta", "2024-01-01")
	keep := dbtest.SeedGame(t, db, other, "Keep", "2022-01-01")
	dbtest.SeedComment(t, db, alpha, "sam", time.Now())
	dbtest.SeedComment(t, db, keep, "kim", time.Now())

	require.NoError(t, categories.Delete(ctx, action))

	_, err := categories.GetByID(ctx, action)
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)
	for _, id := range []uint64{alpha, beta} {
		_, err := games.GetByID(ctx, id)
		assert.ErrorIs(t, err, repository.ErrGameNotFound)
	}
	_, err = games.GetByID(ctx, keep)
	assert.NoError(t, err)
	assert.Equal(t, 1, dbtest.Count(t, db, "comments"))

	assert.ErrorIs(t, categories.Delete(ctx, action), repository.ErrCategoryNotFound)
}

func TestGameRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := repository.NewGameRepo(db)
	cat := dbtest.SeedCategory(t, db, "Action")

	g := &model.Game{
		CategoryID:      cat,
		Title:           "Alpha",
		Description:     "# Alpha",
		MinRequirements: strPtr("4GB RAM"),
		TrailerURL:      strPtr("https://video.example.com/alpha"),
		DownloadLink:    "https://example.com/alpha",
		ReleaseDate:     date("2023-01-01"),
	}
	require.NoError(t, repo.Create(ctx, g))

	got, err := repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)
	assert.Equal(t, "Alpha", got.Title)
	assert.Equal(t, "2023-01-01", got.ReleaseDay())
	require.NotNil(t, got.MinRequirements)
	assert.Equal(t, "4GB RAM", *got.MinRequirements)
	assert.Nil(t, got.MaxRequirements)
	assert.Equal(t, "", got.CoverImage)

	_, err = repo.GetByID(ctx, 12345)
	assert.ErrorIs(t, err, repository.ErrGameNotFound)

	err = repo.Create(ctx, &model.Game{CategoryID: 999, Title: "Orphan", ReleaseDate: date("2020-01-01")})
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)
}

func TestGameRepo_ListRecentAndByCategory(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := repository.NewGameRepo(db)
	action := dbtest.SeedCategory(t, db, "Action")
	puzzle := dbtest.SeedCategory(t, db, "Puzzle")
	empty := dbtest.SeedCategory(t, db, "Empty")

	dbtest.SeedGame(t, db, action, "Alpha", "2023-01-01")
	dbtest.SeedGame(t, db, action, "Beta", "2024-01-01")
	for i, day := range []string{"2020-05-01", "2021-05-01", "2022-05-01", "2019-05-01", "2024-06-01", "2024-01-01"} {
		dbtest.SeedGame(t, db, puzzle, "P"+string(rune('a'+i)), day)
	}

	recent, err := repo.ListRecent(ctx, 6)
	require.NoError(t, err)
	require.Len(t, recent, 6)
	for i := 1; i < len(recent); i++ {
		assert.False(t, recent[i].ReleaseDate.After(recent[i-1].ReleaseDate), "not sorted at %d", i)
	}
	assert.Equal(t, "Pe", recent[0].Title)
	// same release date: the later insert wins the tie
	assert.Equal(t, []string{"Pf", "Beta"}, titles(recent[1:3]))

	byCat, err := repo.ListByCategory(ctx, action)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta", "Alpha"}, titles(byCat))

	none, err := repo.ListByCategory(ctx, empty)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGameRepo_Search(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := repository.NewGameRepo(db)
	action := dbtest.SeedCategory(t, db, "Action")
	puzzle := dbtest.SeedCategory(t, db, "Puzzle")
	dbtest.SeedGame(t, db, action, "Space Race", "2023-03-10")
	dbtest.SeedGame(t, db, action, "Dungeon", "2023-07-01")
	dbtest.SeedGame(t, db, puzzle, "Space Blocks", "2024-03-02")

	items, total, err := repo.Search(ctx, repository.GameFilter{Query: "SPACE"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []string{"Space Blocks", "Space Race"}, titles(items))

	items, total, err = repo.Search(ctx, repository.GameFilter{CategoryID: action, Year: 2023, Month: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, []string{"Space Race"}, titles(items))

	items, total, err = repo.Search(ctx, repository.GameFilter{Year: 2023})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	items, total, err = repo.Search(ctx, repository.GameFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []string{"Space Race"}, titles(items))
}

func TestSearch_WildcardsMatchLiterally(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	cats := repository.NewCategoryRepo(db)
	games := repository.NewGameRepo(db)
	action := dbtest.SeedCategory(t, db, "100% Action")
	dbtest.SeedCategory(t, db, "1000 Puzzles")
	dbtest.SeedGame(t, db, action, "snake_case", "2023-01-01")
	dbtest.SeedGame(t, db, action, "snakeXcase", "2023-01-02")
	dbtest.SeedGame(t, db, action, "Bang!", "2023-01-03")

	found, err := cats.Search(ctx, repository.CategoryFilter{Query: "100%"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "100% Action", found[0].Name)

	items, total, err := games.Search(ctx, repository.GameFilter{Query: "e_c"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, []string{"snake_case"}, titles(items))

	items, _, err = games.Search(ctx, repository.GameFilter{Query: "g!"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bang!"}, titles(items))
}

func TestInTx_RollsBackRepositoryWrites(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	err := repository.InTx(ctx, db, func(tx *sql.Tx) error {
		cat := &model.Category{Name: "Action"}
		if err := repository.NewCategoryRepo(tx).Create(ctx, cat); err != nil {
			return err
		}
		return repository.NewGameRepo(tx).Create(ctx, &model.Game{
			CategoryID: cat.ID + 100, Title: "Orphan", Description: "d",
			DownloadLink: "https://example.com", ReleaseDate: date("2023-01-01"),
		})
	})
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)
	assert.Equal(t, 0, dbtest.Count(t, db, "categories"))

	require.NoError(t, repository.InTx(ctx, db, func(tx *sql.Tx) error {
		return repository.NewCategoryRepo(tx).Create(ctx, &model.Category{Name: "Puzzle"})
	}))
	assert.Equal(t, 1, dbtest.Count(t, db, "categories"))
}

func TestGameRepo_UpdateSetCoverDelete(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := repository.NewGameRepo(db)
	action := dbtest.SeedCategory(t, db, "Action")
	puzzle := dbtest.SeedCategory(t, db, "Puzzle")
	id := dbtest.SeedGame(t, db, action, "Alpha", "2023-01-01")
	dbtest.SeedComment(t, db, id, "sam", time.Now())

	g, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	g.CategoryID = puzzle
	g.Title = "Alpha Remastered"
	g.ReleaseDate = date("2025-02-03")
	require.NoError(t, repo.Update(ctx, g))
	require.NoError(t, repo.SetCover(ctx, id, "covers/alpha.jpg"))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, puzzle, got.CategoryID)
	assert.Equal(t, "Alpha Remastered", got.Title)
	assert.Equal(t, "2025-02-03", got.ReleaseDay())
	assert.Equal(t, "covers/alpha.jpg", got.CoverImage)

	g.CategoryID = 777
	assert.ErrorIs(t, repo.Update(ctx, g), repository.ErrCategoryNotFound)
	assert.ErrorIs(t, repo.SetCover(ctx, 555, "x"), repository.ErrGameNotFound)

	require.NoError(t, repo.Delete(ctx, id))
	assert.Equal(t, 0, dbtest.Count(t, db, "comments"))
	assert.ErrorIs(t, repo.Delete(ctx, id), repository.ErrGameNotFound)
}

func TestCommentRepo_NewestFirst(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := repository.NewCommentRepo(db)
	cat := dbtest.SeedCategory(t, db, "Action")
	game := dbtest.SeedGame(t, db, cat, "Alpha", "2023-01-01")
	other := dbtest.SeedGame(t, db, cat, "Beta", "2023-01-01")

	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	dbtest.SeedComment(t, db, game, "first", base)
	dbtest.SeedComment(t, db, other, "elsewhere", base.Add(time.Hour))

	c := &model.Comment{GameID: game, Nickname: "sam", Email: "sam@x.com", PasswordHash: "h", Text: "great game",
		CreatedAt: base.Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, c))
	assert.NotZero(t, c.ID)

	list, err := repo.ListByGame(ctx, game)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "sam", list[0].Nickname)
	assert.Equal(t, game, list[0].GameID)
	assert.True(t, list[0].CreatedAt.Equal(base.Add(time.Minute)))
	assert.Equal(t, "first", list[1].Nickname)

	none, err := repo.ListByGame(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAdminUserRepo(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewAdminUserRepo(dbtest.New(t))

	id, err := repo.Create(ctx, " admin ", "pw", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotZero(t, id)

	u, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.NotEqual(t, "pw", u.PasswordHash)
	assert.False(t, u.CreatedAt.IsZero())

	_, err = repo.Create(ctx, "admin", "other", bcrypt.MinCost)
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
