package commands

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/game-catalog/internal/model"
	"github.com/iliyamo/game-catalog/internal/repository"
	"github.com/iliyamo/game-catalog/internal/service"
)

//go:embed seed.json
var demoSeed []byte

var seedFile string

// seedData is the file format accepted by the seed command.  Records are
// checked with the same rules as the admin API.
type seedData struct {
	Categories []seedCategory `json:"categories"`
}

type seedCategory struct {
	Name        string     `json:"name" form:"name" validate:"required,max=100"`
	Description *string    `json:"description" form:"description"`
	Games       []seedGame `json:"games" form:"-" validate:"-"`
}

type seedGame struct {
	Title           string  `json:"title" form:"title" validate:"required,max=200"`
	Description     string  `json:"description" form:"description" validate:"required"`
	MinRequirements *string `json:"min_requirements" form:"min_requirements"`
	MaxRequirements *string `json:"max_requirements" form:"max_requirements"`
	CoverImage      string  `json:"cover_image" form:"cover_image" validate:"max=200"`
	TrailerURL      *string `json:"trailer_url" form:"trailer_url" validate:"omitempty,url,max=200"`
	DownloadLink    string  `json:"download_link" form:"download_link" validate:"required,url,max=200"`
	ReleaseDate     string  `json:"release_date" form:"release_date" validate:"required,datetime=2006-01-02"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load categories and games from a JSON file (demo data by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := demoSeed
		if seedFile != "" {
			b, err := os.ReadFile(seedFile)
			if err != nil {
				return err
			}
			raw = b
		}
		var data seedData
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("parse seed: %w", err)
		}
		return withDB(cmd.Context(), true, func(ctx context.Context, db *sql.DB) error {
			return seed(ctx, db, data)
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "seed file (JSON)")
}

// seed validates every record and inserts them in one transaction, so a
// bad record leaves the database untouched.
func seed(ctx context.Context, db *sql.DB, data seedData) error {
	var nGames int
	err := repository.InTx(ctx, db, func(tx *sql.Tx) error {
		cats := repository.NewCategoryRepo(tx)
		games := repository.NewGameRepo(tx)
		for _, sc := range data.Categories {
			sc.Name = strings.TrimSpace(sc.Name)
			if fields := service.ValidateStruct(sc); fields != nil {
				return fmt.Errorf("category %q: %w", sc.Name, fields)
			}
			cat := &model.Category{Name: sc.Name, Description: sc.Description}
			if err := cats.Create(ctx, cat); err != nil {
				return fmt.Errorf("category %q: %w", sc.Name, err)
			}
			for _, sg := range sc.Games {
				g, err := seedToGame(cat.ID, sg)
				if err != nil {
					return err
				}
				if err := games.Create(ctx, g); err != nil {
					return fmt.Errorf("game %q: %w", sg.Title, err)
				}
				nGames++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d categories and %d games\n", len(data.Categories), nGames)
	return nil
}

func seedToGame(categoryID uint64, sg seedGame) (*model.Game, error) {
	sg.Title = strings.TrimSpace(sg.Title)
	sg.Description = strings.TrimSpace(sg.Description)
	sg.DownloadLink = strings.TrimSpace(sg.DownloadLink)
	sg.ReleaseDate = strings.TrimSpace(sg.ReleaseDate)
	if fields := service.ValidateStruct(sg); fields != nil {
		return nil, fmt.Errorf("game %q: %w", sg.Title, fields)
	}
	released, err := time.Parse(model.DateLayout, sg.ReleaseDate)
	if err != nil {
		return nil, fmt.Errorf("game %q: release_date: %w", sg.Title, err)
	}
	return &model.Game{
		CategoryID:      categoryID,
		Title:           sg.Title,
		Description:     sg.Description,
		MinRequirements: sg.MinRequirements,
		MaxRequirements: sg.MaxRequirements,
		CoverImage:      sg.CoverImage,
		TrailerURL:      sg.TrailerURL,
		DownloadLink:    sg.DownloadLink,
		ReleaseDate:     released,
	}, nil
}
