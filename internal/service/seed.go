package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/repository"
)

const (
	DefaultSeedCount = 5000
	seedBatchSize    = 500
	seedSpanDays     = 365
)

type SeedResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var defaultCategories = []struct{ Name, Type string }{
	{"Action", "game"}, {"RPG", "game"}, {"Strategy", "game"}, {"FPS", "game"}, {"Racing", "game"}, {"Sports", "game"},
	{"Productivity", "software"}, {"Development", "software"}, {"Graphics", "software"}, {"Utilities", "software"},
	{"Action", "movie"}, {"Comedy", "movie"}, {"Drama", "movie"}, {"Sci-Fi", "movie"}, {"Horror", "movie"}, {"Thriller", "movie"},
	{"Drama", "tv_show"}, {"Comedy", "tv_show"}, {"Sci-Fi", "tv_show"}, {"Crime", "tv_show"}, {"Documentary", "tv_show"},
}

var (
	gamePrefixes   = []string{"Super", "Mega", "Ultra", "Epic", "Cyber", "Dark", "Shadow", "Crystal", "Dragon", "Space"}
	gameSuffixes   = []string{"Warriors", "Quest", "Saga", "Chronicles", "Adventures", "Legends", "Heroes", "Knights"}
	gameCategories = []string{"Action", "RPG", "Strategy", "FPS", "Racing", "Sports"}
	gameTags       = []string{"multiplayer", "singleplayer", "co-op", "open-world", "indie", "AAA", "remastered", "GOTY"}

	softwareNames = []string{
		"VLC Media Player", "GIMP Image Editor", "Audacity Audio Editor", "LibreOffice Suite", "Firefox Browser",
		"Blender 3D", "Inkscape Vector", "OBS Studio", "HandBrake Video", "7-Zip Archiver",
		"Notepad++ Editor", "FileZilla FTP", "KeePass Password", "Thunderbird Mail", "XAMPP Server",
		"TurboOffice Pro", "DataMaster Suite", "CodeForge IDE", "PhotoMax Studio", "VideoFlex Editor",
	}
	softwareCategories = []string{"Productivity", "Development", "Graphics", "Utilities"}
	softwareTags       = []string{"portable", "open-source", "freeware", "cross-platform", "windows", "mac", "linux"}

	movieAdjectives = []string{"The", "A", "Last", "Final", "Dark", "Eternal", "Hidden", "Secret", "Lost"}
	movieNouns      = []string{"Knight", "Storm", "Journey", "Mission", "Dream", "Night", "Day", "Legacy", "Code"}
	movieQualities  = []string{"720p", "1080p", "2160p 4K", "BluRay", "WEB-DL"}
	movieGenres     = []string{"Action", "Comedy", "Drama", "Sci-Fi", "Horror", "Thriller"}
	movieTags       = []string{"720p", "1080p", "4K", "HDR", "BluRay", "WEB-DL", "subtitles", "dual-audio"}

	tvShows = []struct {
		Name    string
		Seasons int
	}{
		{"Quantum Detective", 5}, {"Starship Voyagers", 7}, {"The Last Frontier", 4}, {"Midnight City", 6},
		{"Corporate Chaos", 3}, {"Medical Mayhem", 8}, {"Legal Eagles", 5}, {"Cooking Catastrophe", 4},
	}
	tvQualities  = []string{"720p", "1080p", "WEB-DL", "HDTV"}
	tvCategories = []string{"Drama", "Comedy", "Sci-Fi", "Crime", "Documentary"}
	tvTags       = []string{"complete-season", "ongoing", "finale", "premiere", "HDTV", "WEB-DL"}
)

// SeedService fills an empty catalog with generated sample entries. The
// same seed always produces the same entries.
type SeedService struct {
	downloadRepository repository.DownloadRepository
	categoryRepository repository.CategoryRepository
	seed               uint64
}

func NewSeedService(downloadRepository repository.DownloadRepository, categoryRepository repository.CategoryRepository, seed uint64) *SeedService {
	return &SeedService{
		downloadRepository: downloadRepository,
		categoryRepository: categoryRepository,
		seed:               seed,
	}
}

func (s *SeedService) Seed(ctx context.Context, n int, now time.Time) (*SeedResult, error) {
	if n <= 0 {
		n = DefaultSeedCount
	}

	existing, err := s.downloadRepository.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count downloads: %w", err)
	}
	if existing > 0 {
		return &SeedResult{Success: false, Message: fmt.Sprintf("Database already has %d items", existing)}, nil
	}

	if err := s.seedCategories(ctx, now); err != nil {
		return nil, err
	}

	downloads, err := newSeedGenerator(s.seed, now).generate(n)
	if err != nil {
		return nil, err
	}
	for start := 0; start < len(downloads); start += seedBatchSize {
		end := min(start+seedBatchSize, len(downloads))
		if err := s.downloadRepository.CreateBatch(ctx, downloads[start:end]); err != nil {
			return nil, fmt.Errorf("failed to insert seed downloads: %w", err)
		}
	}

	slog.Info("database seeded", "downloads", len(downloads))
	return &SeedResult{
		Success: true,
		Message: fmt.Sprintf("Seeded %d downloads with categories and tags", len(downloads)),
	}, nil
}

func (s *SeedService) seedCategories(ctx context.Context, now time.Time) error {
	for _, c := range defaultCategories {
		category, err := model.NewCategory(uuid.New().String(), c.Name, c.Type, now)
		if err != nil {
			return err
		}
		err = s.categoryRepository.Create(ctx, category)
		if err != nil && !errors.Is(err, repository.ErrDuplicateCategory) {
			return fmt.Errorf("failed to create category %s: %w", c.Name, err)
		}
	}
	return nil
}

type seedGenerator struct {
	rnd   *rand.Rand
	start time.Time
	now   time.Time
}

func newSeedGenerator(seed uint64, now time.Time) *seedGenerator {
	return &seedGenerator{
		rnd:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		start: now.UTC().AddDate(0, 0, -seedSpanDays),
		now:   now.UTC(),
	}
}

// generate splits n roughly 30/24/26/20 across games, software, movies and
// TV episodes.
func (g *seedGenerator) generate(n int) ([]*model.Download, error) {
	games := n * 30 / 100
	software := n * 24 / 100
	movies := n * 26 / 100
	episodes := n - games - software - movies

	out := make([]*model.Download, 0, n)
	add := func(entry seedEntry) error {
		d, err := g.build(entry)
		if err != nil {
			return err
		}
		out = append(out, d)
		return nil
	}

	for range games {
		if err := add(g.game()); err != nil {
			return nil, err
		}
	}
	for range software {
		if err := add(g.software()); err != nil {
			return nil, err
		}
	}
	for range movies {
		if err := add(g.movie()); err != nil {
			return nil, err
		}
	}
	for _, entry := range g.episodes(episodes) {
		if err := add(entry); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type seedEntry struct {
	input     model.SubmissionInput
	downloads int64
}

// build runs the entry through the same validation as a public submission.
func (g *seedGenerator) build(e seedEntry) (*model.Download, error) {
	created := g.start.Add(time.Duration(g.rnd.Int64N(int64(g.now.Sub(g.start)))))

	sub, err := model.NewSubmission(uuid.New().String(), e.input, created)
	if err != nil {
		return nil, fmt.Errorf("invalid seed entry %q: %w", e.input.Name, err)
	}
	d := model.DownloadFromSubmission(sub, uuid.New().String(), created)
	d.DownloadCount = e.downloads
	return d, nil
}

func (g *seedGenerator) entry(typ, name, path, size, description, category string, tags []string, maxDownloads int64) seedEntry {
	return seedEntry{
		input: model.SubmissionInput{
			Name:         name,
			DownloadLink: fmt.Sprintf("https://example.com/%s/%08x", path, g.rnd.Uint32()),
			Type:         typ,
			SiteName:     "Sample",
			SiteURL:      "https://example.com",
			FileSize:     &size,
			Description:  &description,
			Category:     &category,
			Tags:         tags,
		},
		downloads: g.rnd.Int64N(maxDownloads + 1),
	}
}

func (g *seedGenerator) game() seedEntry {
	name := fmt.Sprintf("%s %s %d.%d", g.pick(gamePrefixes), g.pick(gameSuffixes), g.between(1, 3), g.between(0, 9))
	size := fmt.Sprintf("%d.%d GB", g.between(5, 100), g.between(0, 9))
	description := fmt.Sprintf("Epic %s game", g.pick([]string{"adventure", "action", "strategy"}))
	return g.entry("game", name, "games", size, description, g.pick(gameCategories), g.sample(gameTags, 2, 4), 50000)
}

func (g *seedGenerator) software() seedEntry {
	name := fmt.Sprintf("%s v%d.%d.%d", g.pick(softwareNames), g.between(1, 25), g.between(0, 9), g.between(0, 999))
	size := fmt.Sprintf("%d MB", g.between(10, 2000))
	description := "Full version"
	if g.rnd.Float64() > 0.7 {
		description = "Portable version"
	}
	return g.entry("software", name, "software", size, description, g.pick(softwareCategories), g.sample(softwareTags, 2, 4), 100000)
}

func (g *seedGenerator) movie() seedEntry {
	name := fmt.Sprintf("%s %s (%d) %s", g.pick(movieAdjectives), g.pick(movieNouns), g.between(2020, 2025), g.pick(movieQualities))
	size := fmt.Sprintf("%d.%d GB", g.between(1, 20), g.between(0, 9))
	genre := g.pick(movieGenres)
	return g.entry("movie", name, "movies", size, genre+" film", g.pick(movieGenres), g.sample(movieTags, 2, 4), 75000)
}

// episodes walks the shows season by season, starting over when every
// show is exhausted.
func (g *seedGenerator) episodes(n int) []seedEntry {
	out := make([]seedEntry, 0, n)
	for len(out) < n {
		for _, show := range tvShows {
			for season := 1; season <= show.Seasons; season++ {
				count := g.between(8, 24)
				for episode := 1; episode <= count; episode++ {
					if len(out) == n {
						return out
					}
					name := fmt.Sprintf("%s S%02dE%02d %s", show.Name, season, episode, g.pick(tvQualities))
					size := fmt.Sprintf("%d MB", g.between(200, 1500))
					description := fmt.Sprintf("Season %d, Episode %d", season, episode)
					out = append(out, g.entry("tv_show", name, "tv", size, description, g.pick(tvCategories), g.sample(tvTags, 2, 3), 30000))
				}
			}
		}
	}
	return out
}

func (g *seedGenerator) between(lo, hi int) int {
	return lo + g.rnd.IntN(hi-lo+1)
}

func (g *seedGenerator) pick(values []string) string {
	return values[g.rnd.IntN(len(values))]
}

func (g *seedGenerator) sample(values []string, lo, hi int) []string {
	shuffled := make([]string, len(values))
	copy(shuffled, values)
	g.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:g.between(lo, hi)]
}
