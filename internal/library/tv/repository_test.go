package tv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/seasonarr/seasonarr/internal/library/quality"
	"github.com/seasonarr/seasonarr/internal/library/tv"
	"github.com/seasonarr/seasonarr/internal/testutil"
)

func newRepo(t *testing.T) *tv.Repository {
	t.Helper()
	tdb := testutil.NewTestDB(t)
	return tv.NewRepository(tdb.Conn, tdb.Logger)
}

func seedShow(t *testing.T, repo *tv.Repository) (*tv.Show, *tv.Season) {
	t.Helper()
	ctx := context.Background()
	show := &tv.Show{ID: uuid.New(), Name: "Sample Show", Year: 2022, ExternalID: 99, MetadataProvider: "tvdb"}
	if err := repo.AddShow(ctx, show); err != nil {
		t.Fatalf("AddShow: %v", err)
	}
	season := &tv.Season{ID: uuid.New(), ShowID: show.ID, Number: 1}
	if err := repo.AddSeason(ctx, season); err != nil {
		t.Fatalf("AddSeason: %v", err)
	}
	return show, season
}

func TestShowDefaultsLibrary(t *testing.T) {
	repo := newRepo(t)
	show, _ := seedShow(t, repo)

	got, err := repo.GetShow(context.Background(), show.ID)
	if err != nil {
		t.Fatalf("GetShow: %v", err)
	}
	if got.Library != "shows" {
		t.Errorf("library = %q, want default shows", got.Library)
	}
}

func TestGetShowBySeason(t *testing.T) {
	repo := newRepo(t)
	show, season := seedShow(t, repo)

	got, err := repo.GetShowBySeason(context.Background(), season.ID)
	if err != nil {
		t.Fatalf("GetShowBySeason: %v", err)
	}
	if got.ID != show.ID {
		t.Errorf("got show %v, want %v", got.ID, show.ID)
	}

	if _, err := repo.GetShowBySeason(context.Background(), uuid.New()); !errors.Is(err, tv.ErrShowNotFound) {
		t.Errorf("expected ErrShowNotFound, got %v", err)
	}
}

func TestGetSeasonByNumber(t *testing.T) {
	repo := newRepo(t)
	show, season := seedShow(t, repo)

	got, err := repo.GetSeasonByNumber(context.Background(), show.ID, 1)
	if err != nil {
		t.Fatalf("GetSeasonByNumber: %v", err)
	}
	if got.ID != season.ID {
		t.Errorf("got season %v, want %v", got.ID, season.ID)
	}

	if _, err := repo.GetSeasonByNumber(context.Background(), show.ID, 9); !errors.Is(err, tv.ErrSeasonNotFound) {
		t.Errorf("expected ErrSeasonNotFound, got %v", err)
	}
}

func TestSeasonFileUpsertOnSeasonQuality(t *testing.T) {
	repo := newRepo(t)
	_, season := seedShow(t, repo)
	ctx := context.Background()

	first := uuid.New()
	second := uuid.New()
	if err := repo.AddSeasonFile(ctx, &tv.SeasonFile{
		ID: uuid.New(), SeasonID: season.ID, TorrentID: &first,
		Quality: quality.FullHD, FilePathSuffix: "FULLHD",
	}); err != nil {
		t.Fatalf("AddSeasonFile: %v", err)
	}

	// A re-grab of the same season at the same quality replaces the row
	// instead of accumulating duplicates.
	if err := repo.AddSeasonFile(ctx, &tv.SeasonFile{
		ID: uuid.New(), SeasonID: season.ID, TorrentID: &second,
		Quality: quality.FullHD, FilePathSuffix: "PROPER",
	}); err != nil {
		t.Fatalf("AddSeasonFile upsert: %v", err)
	}

	files, err := repo.SeasonFilesBySeason(ctx, season.ID)
	if err != nil {
		t.Fatalf("SeasonFilesBySeason: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 season file after upsert, got %d", len(files))
	}
	if files[0].TorrentID == nil || *files[0].TorrentID != second {
		t.Errorf("torrent id not replaced: %v", files[0].TorrentID)
	}
	if files[0].FilePathSuffix != "PROPER" {
		t.Errorf("suffix = %q, want PROPER", files[0].FilePathSuffix)
	}

	// A different quality on the same season is a separate row.
	if err := repo.AddSeasonFile(ctx, &tv.SeasonFile{
		ID: uuid.New(), SeasonID: season.ID, TorrentID: &first,
		Quality: quality.UHD, FilePathSuffix: "UHD",
	}); err != nil {
		t.Fatalf("AddSeasonFile second quality: %v", err)
	}
	files, err = repo.SeasonFilesBySeason(ctx, season.ID)
	if err != nil {
		t.Fatalf("SeasonFilesBySeason: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 season files, got %d", len(files))
	}
}

func TestSeasonFileNilTorrent(t *testing.T) {
	repo := newRepo(t)
	_, season := seedShow(t, repo)
	ctx := context.Background()

	if err := repo.AddSeasonFile(ctx, &tv.SeasonFile{
		ID: uuid.New(), SeasonID: season.ID,
		Quality: quality.HD, FilePathSuffix: "HD",
	}); err != nil {
		t.Fatalf("AddSeasonFile: %v", err)
	}

	files, err := repo.SeasonFilesBySeason(ctx, season.ID)
	if err != nil {
		t.Fatalf("SeasonFilesBySeason: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 season file, got %d", len(files))
	}
	if files[0].TorrentID != nil {
		t.Errorf("expected nil torrent id, got %v", files[0].TorrentID)
	}
}

func TestSeasonFilesForTorrentLifecycle(t *testing.T) {
	repo := newRepo(t)
	_, season := seedShow(t, repo)
	ctx := context.Background()
	torrentID := uuid.New()

	if err := repo.AddSeasonFile(ctx, &tv.SeasonFile{
		ID: uuid.New(), SeasonID: season.ID, TorrentID: &torrentID,
		Quality: quality.FullHD, FilePathSuffix: "FULLHD",
	}); err != nil {
		t.Fatalf("AddSeasonFile: %v", err)
	}

	has, err := repo.HasSeasonFilesForTorrent(ctx, torrentID)
	if err != nil {
		t.Fatalf("HasSeasonFilesForTorrent: %v", err)
	}
	if !has {
		t.Error("expected season files for torrent")
	}

	if err := repo.RemoveSeasonFilesForTorrent(ctx, torrentID); err != nil {
		t.Fatalf("RemoveSeasonFilesForTorrent: %v", err)
	}
	has, err = repo.HasSeasonFilesForTorrent(ctx, torrentID)
	if err != nil {
		t.Fatalf("HasSeasonFilesForTorrent: %v", err)
	}
	if has {
		t.Error("expected no season files after removal")
	}
}

func TestSeasonRequestLifecycle(t *testing.T) {
	repo := newRepo(t)
	_, season := seedShow(t, repo)
	ctx := context.Background()

	request := &tv.SeasonRequest{
		ID:            uuid.New(),
		SeasonID:      season.ID,
		WantedQuality: quality.FullHD,
		MinQuality:    quality.HD,
		RequestedBy:   "alice",
	}
	if err := repo.AddSeasonRequest(ctx, request); err != nil {
		t.Fatalf("AddSeasonRequest: %v", err)
	}

	// Unauthorized requests are listed but not eligible for auto-download.
	all, err := repo.ListSeasonRequests(ctx)
	if err != nil {
		t.Fatalf("ListSeasonRequests: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 request, got %d", len(all))
	}
	authorized, err := repo.ListAuthorizedSeasonRequests(ctx)
	if err != nil {
		t.Fatalf("ListAuthorizedSeasonRequests: %v", err)
	}
	if len(authorized) != 0 {
		t.Fatalf("expected 0 authorized requests, got %d", len(authorized))
	}

	if err := repo.AuthorizeSeasonRequest(ctx, request.ID, "bob"); err != nil {
		t.Fatalf("AuthorizeSeasonRequest: %v", err)
	}
	got, err := repo.GetSeasonRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("GetSeasonRequest: %v", err)
	}
	if !got.Authorized || got.AuthorizedBy != "bob" {
		t.Errorf("authorization not recorded: %+v", got)
	}
	if got.WantedQuality != quality.FullHD || got.MinQuality != quality.HD {
		t.Errorf("quality bounds lost on round trip: %+v", got)
	}

	authorized, err = repo.ListAuthorizedSeasonRequests(ctx)
	if err != nil {
		t.Fatalf("ListAuthorizedSeasonRequests: %v", err)
	}
	if len(authorized) != 1 {
		t.Fatalf("expected 1 authorized request, got %d", len(authorized))
	}

	if err := repo.DeleteSeasonRequest(ctx, request.ID); err != nil {
		t.Fatalf("DeleteSeasonRequest: %v", err)
	}
	if _, err := repo.GetSeasonRequest(ctx, request.ID); !errors.Is(err, tv.ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound after delete, got %v", err)
	}
}

func TestAuthorizeMissingRequest(t *testing.T) {
	repo := newRepo(t)

	err := repo.AuthorizeSeasonRequest(context.Background(), uuid.New(), "bob")
	if !errors.Is(err, tv.ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestListEpisodesOrdered(t *testing.T) {
	repo := newRepo(t)
	_, season := seedShow(t, repo)
	ctx := context.Background()

	for _, n := range []int{2, 1, 3} {
		if err := repo.AddEpisode(ctx, &tv.Episode{
			ID: uuid.New(), SeasonID: season.ID, Number: n,
		}); err != nil {
			t.Fatalf("AddEpisode: %v", err)
		}
	}

	episodes, err := repo.ListEpisodes(ctx, season.ID)
	if err != nil {
		t.Fatalf("ListEpisodes: %v", err)
	}
	if len(episodes) != 3 {
		t.Fatalf("expected 3 episodes, got %d", len(episodes))
	}
	for i, e := range episodes {
		if e.Number != i+1 {
			t.Fatalf("episodes out of order: %+v", episodes)
		}
	}
}
