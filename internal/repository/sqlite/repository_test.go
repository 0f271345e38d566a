package sqlite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
)

func newTestConfig(t *testing.T) *RepositoryConfig {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &RepositoryConfig{
		DB:     db,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func mustFolder(t *testing.T, repo *FolderRepository, name string, parentID *string) *models.Folder {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	folder := &models.Folder{
		ID:        uuid.NewString(),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(context.Background(), folder); err != nil {
		t.Fatalf("create folder %q: %v", name, err)
	}
	return folder
}

func mustNote(t *testing.T, repo *NoteRepository, title, content string, folderID *string, updatedAt time.Time) *models.Note {
	t.Helper()
	note := &models.Note{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		FolderID:  folderID,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	if err := repo.Create(context.Background(), note); err != nil {
		t.Fatalf("create note %q: %v", title, err)
	}
	return note
}

func TestFolderCreateAndGet(t *testing.T) {
	config := newTestConfig(t)
	repo := NewFolderRepository(config)
	ctx := context.Background()

	created := mustFolder(t, repo, "Projects", nil)

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get folder: %v", err)
	}
	if got.Name != "Projects" {
		t.Errorf("name = %q, want %q", got.Name, "Projects")
	}
	if got.ParentID != nil {
		t.Errorf("parent_id = %v, want nil", *got.ParentID)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestFolderGetMissing(t *testing.T) {
	config := newTestConfig(t)
	repo := NewFolderRepository(config)

	_, err := repo.GetByID(context.Background(), uuid.NewString())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFolderUpdateMissing(t *testing.T) {
	config := newTestConfig(t)
	repo := NewFolderRepository(config)

	phantom := &models.Folder{
		ID:        uuid.NewString(),
		Name:      "ghost",
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Update(context.Background(), phantom); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFolderDeleteIsIdempotent(t *testing.T) {
	config := newTestConfig(t)
	repo := NewFolderRepository(config)
	ctx := context.Background()

	folder := mustFolder(t, repo, "scratch", nil)
	if err := repo.Delete(ctx, folder.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := repo.Delete(ctx, folder.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestFolderDeleteCascadesAndDetachesNotes(t *testing.T) {
	config := newTestConfig(t)
	folders := NewFolderRepository(config)
	notes := NewNoteRepository(config)
	ctx := context.Background()

	root := mustFolder(t, folders, "root", nil)
	child := mustFolder(t, folders, "child", &root.ID)
	grandchild := mustFolder(t, folders, "grandchild", &child.ID)
	sibling := mustFolder(t, folders, "sibling", nil)

	now := time.Now().UTC().Truncate(time.Millisecond)
	inChild := mustNote(t, notes, "in child", "", &child.ID, now)
	inGrandchild := mustNote(t, notes, "in grandchild", "", &grandchild.ID, now)
	inSibling := mustNote(t, notes, "in sibling", "", &sibling.ID, now)

	if err := folders.Delete(ctx, root.ID); err != nil {
		t.Fatalf("delete root: %v", err)
	}

	for _, id := range []string{root.ID, child.ID, grandchild.ID} {
		if _, err := folders.GetByID(ctx, id); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("folder %s survived subtree delete (err = %v)", id, err)
		}
	}

	// Notes in the deleted subtree are detached, never deleted.
	for _, id := range []string{inChild.ID, inGrandchild.ID} {
		note, err := notes.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("get detached note: %v", err)
		}
		if note.FolderID != nil {
			t.Errorf("note %s folder_id = %v, want nil after cascade", id, *note.FolderID)
		}
	}

	untouched, err := notes.GetByID(ctx, inSibling.ID)
	if err != nil {
		t.Fatalf("get sibling note: %v", err)
	}
	if untouched.FolderID == nil || *untouched.FolderID != sibling.ID {
		t.Errorf("sibling note was detached, want folder_id %s", sibling.ID)
	}
}

func TestFolderListAllOrdersByName(t *testing.T) {
	config := newTestConfig(t)
	repo := NewFolderRepository(config)

	mustFolder(t, repo, "zeta", nil)
	mustFolder(t, repo, "alpha", nil)
	mustFolder(t, repo, "mid", nil)

	folders, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list folders: %v", err)
	}
	if len(folders) != 3 {
		t.Fatalf("len = %d, want 3", len(folders))
	}
	for i, want := range []string{"alpha", "mid", "zeta"} {
		if folders[i].Name != want {
			t.Errorf("folders[%d].Name = %q, want %q", i, folders[i].Name, want)
		}
	}
}

func TestFolderNoteCounts(t *testing.T) {
	config := newTestConfig(t)
	folders := NewFolderRepository(config)
	notes := NewNoteRepository(config)

	a := mustFolder(t, folders, "a", nil)
	b := mustFolder(t, folders, "b", nil)

	now := time.Now().UTC()
	mustNote(t, notes, "1", "", &a.ID, now)
	mustNote(t, notes, "2", "", &a.ID, now)
	mustNote(t, notes, "3", "", nil, now)

	counts, err := folders.NoteCounts(context.Background())
	if err != nil {
		t.Fatalf("note counts: %v", err)
	}
	if counts[a.ID] != 2 {
		t.Errorf("counts[a] = %d, want 2", counts[a.ID])
	}
	if _, ok := counts[b.ID]; ok {
		t.Errorf("counts[b] present, empty folders must be absent")
	}
}

func TestNoteCreateWithMissingFolder(t *testing.T) {
	config := newTestConfig(t)
	repo := NewNoteRepository(config)

	missing := uuid.NewString()
	note := &models.Note{
		ID:        uuid.NewString(),
		Title:     "orphan",
		FolderID:  &missing,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), note); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for dangling folder reference", err)
	}
}

func TestNoteListOrdersByUpdatedAtDesc(t *testing.T) {
	config := newTestConfig(t)
	repo := NewNoteRepository(config)

	base := time.Now().UTC().Truncate(time.Millisecond)
	oldest := mustNote(t, repo, "oldest", "", nil, base.Add(-2*time.Hour))
	newest := mustNote(t, repo, "newest", "", nil, base)
	middle := mustNote(t, repo, "middle", "", nil, base.Add(-time.Hour))

	notes, err := repo.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("len = %d, want 3", len(notes))
	}
	for i, want := range []string{newest.ID, middle.ID, oldest.ID} {
		if notes[i].ID != want {
			t.Errorf("notes[%d].ID = %s, want %s", i, notes[i].ID, want)
		}
	}
}

func TestNoteListByFolder(t *testing.T) {
	config := newTestConfig(t)
	folders := NewFolderRepository(config)
	repo := NewNoteRepository(config)

	folder := mustFolder(t, folders, "work", nil)
	now := time.Now().UTC()
	inFolder := mustNote(t, repo, "in", "", &folder.ID, now)
	mustNote(t, repo, "out", "", nil, now)

	notes, err := repo.List(context.Background(), &folder.ID)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 1 || notes[0].ID != inFolder.ID {
		t.Fatalf("notes = %+v, want only the folder's note", notes)
	}
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	config := newTestConfig(t)
	repo := NewNoteRepository(config)
	ctx := context.Background()

	now := time.Now().UTC()
	byTitle := mustNote(t, repo, "Foobar adventures", "nothing here", nil, now)
	byContent := mustNote(t, repo, "unrelated", "contains FOO somewhere", nil, now)
	mustNote(t, repo, "neither", "nope", nil, now)

	notes, err := repo.Search(ctx, models.SearchOptions{Query: "foo"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("len = %d, want 2 (title and content matches)", len(notes))
	}
	found := map[string]bool{}
	for _, n := range notes {
		found[n.ID] = true
	}
	if !found[byTitle.ID] || !found[byContent.ID] {
		t.Errorf("matches = %v, want both %s and %s", found, byTitle.ID, byContent.ID)
	}
}

func TestSearchFolderFilterIsExact(t *testing.T) {
	config := newTestConfig(t)
	folders := NewFolderRepository(config)
	repo := NewNoteRepository(config)
	ctx := context.Background()

	parent := mustFolder(t, folders, "parent", nil)
	child := mustFolder(t, folders, "child", &parent.ID)

	now := time.Now().UTC()
	inParent := mustNote(t, repo, "meeting notes", "", &parent.ID, now)
	mustNote(t, repo, "meeting notes too", "", &child.ID, now)

	// No descendant expansion: the child folder's note is excluded.
	notes, err := repo.Search(ctx, models.SearchOptions{Query: "meeting", FolderID: &parent.ID})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(notes) != 1 || notes[0].ID != inParent.ID {
		t.Fatalf("notes = %+v, want only the parent folder's note", notes)
	}
}

func TestSearchTagFilterMatchesAnyAndDeduplicates(t *testing.T) {
	config := newTestConfig(t)
	repo := NewNoteRepository(config)
	tags := NewTagRepository(config)
	ctx := context.Background()

	now := time.Now().UTC()
	tagged := mustNote(t, repo, "tagged note", "", nil, now)
	mustNote(t, repo, "untagged note", "", nil, now)

	for _, name := range []string{"go", "sql"} {
		tag, err := tags.Ensure(ctx, name)
		if err != nil {
			t.Fatalf("ensure tag %q: %v", name, err)
		}
		if err := tags.Link(ctx, tagged.ID, tag.ID); err != nil {
			t.Fatalf("link tag %q: %v", name, err)
		}
	}

	// The note carries both requested tags but must appear once.
	notes, err := repo.Search(ctx, models.SearchOptions{Query: "note", Tags: []string{"go", "sql"}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(notes) != 1 || notes[0].ID != tagged.ID {
		t.Fatalf("notes = %+v, want the tagged note exactly once", notes)
	}
}

func TestSearchNoMatchesReturnsEmptySlice(t *testing.T) {
	config := newTestConfig(t)
	repo := NewNoteRepository(config)

	notes, err := repo.Search(context.Background(), models.SearchOptions{Query: "xyzzy"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if notes == nil {
		t.Fatal("notes = nil, want empty slice")
	}
	if len(notes) != 0 {
		t.Fatalf("len = %d, want 0", len(notes))
	}
}

func TestTagEnsureIsIdempotent(t *testing.T) {
	config := newTestConfig(t)
	repo := NewTagRepository(config)
	ctx := context.Background()

	first, err := repo.Ensure(ctx, "golang")
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	second, err := repo.Ensure(ctx, "golang")
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("ensure created a duplicate: %s vs %s", first.ID, second.ID)
	}
}

func TestTagNamesAreCaseSensitive(t *testing.T) {
	config := newTestConfig(t)
	repo := NewTagRepository(config)
	ctx := context.Background()

	lower, err := repo.Ensure(ctx, "golang")
	if err != nil {
		t.Fatalf("ensure lower: %v", err)
	}
	upper, err := repo.Ensure(ctx, "Golang")
	if err != nil {
		t.Fatalf("ensure upper: %v", err)
	}
	if lower.ID == upper.ID {
		t.Error("differently-cased names resolved to the same tag")
	}
}

func TestTagLinkAndUnlink(t *testing.T) {
	config := newTestConfig(t)
	notes := NewNoteRepository(config)
	repo := NewTagRepository(config)
	ctx := context.Background()

	note := mustNote(t, notes, "n", "", nil, time.Now().UTC())
	tag, err := repo.Ensure(ctx, "todo")
	if err != nil {
		t.Fatalf("ensure tag: %v", err)
	}

	if err := repo.Link(ctx, note.ID, tag.ID); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := repo.Link(ctx, note.ID, tag.ID); err != nil {
		t.Fatalf("relink: %v", err)
	}

	linked, err := repo.ListForNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("list for note: %v", err)
	}
	if len(linked) != 1 || linked[0].Name != "todo" {
		t.Fatalf("linked = %+v, want a single todo tag", linked)
	}

	if err := repo.Unlink(ctx, note.ID, tag.ID); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	linked, err = repo.ListForNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("list after unlink: %v", err)
	}
	if len(linked) != 0 {
		t.Fatalf("linked = %+v, want none after unlink", linked)
	}
}

func TestTagsCascadeAwayWithNote(t *testing.T) {
	config := newTestConfig(t)
	notes := NewNoteRepository(config)
	repo := NewTagRepository(config)
	ctx := context.Background()

	note := mustNote(t, notes, "doomed", "", nil, time.Now().UTC())
	tag, err := repo.Ensure(ctx, "keep")
	if err != nil {
		t.Fatalf("ensure tag: %v", err)
	}
	if err := repo.Link(ctx, note.ID, tag.ID); err != nil {
		t.Fatalf("link: %v", err)
	}

	if err := notes.Delete(ctx, note.ID); err != nil {
		t.Fatalf("delete note: %v", err)
	}

	// The association is gone but the tag itself survives.
	var linkCount int
	if err := config.DB.QueryRow(`SELECT COUNT(*) FROM note_tags WHERE note_id = ?`, note.ID).Scan(&linkCount); err != nil {
		t.Fatalf("count links: %v", err)
	}
	if linkCount != 0 {
		t.Errorf("links = %d, want 0 after note delete", linkCount)
	}
	if _, err := repo.Ensure(ctx, "keep"); err != nil {
		t.Errorf("tag vanished with the note: %v", err)
	}
}

func TestSuggestionListNewestFirst(t *testing.T) {
	config := newTestConfig(t)
	notes := NewNoteRepository(config)
	repo := NewSuggestionRepository(config)
	ctx := context.Background()

	note := mustNote(t, notes, "n", "", nil, time.Now().UTC())
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i, content := range []string{"oldest", "newest"} {
		s := &models.Suggestion{
			ID:        uuid.NewString(),
			NoteID:    note.ID,
			Type:      "improve",
			Content:   content,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("create suggestion: %v", err)
		}
	}

	suggestions, err := repo.ListForNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("list suggestions: %v", err)
	}
	if len(suggestions) != 2 {
		t.Fatalf("len = %d, want 2", len(suggestions))
	}
	if suggestions[0].Content != "newest" {
		t.Errorf("first suggestion = %q, want newest", suggestions[0].Content)
	}
}

func TestSuggestionCreateForMissingNote(t *testing.T) {
	config := newTestConfig(t)
	repo := NewSuggestionRepository(config)

	s := &models.Suggestion{
		ID:        uuid.NewString(),
		NoteID:    uuid.NewString(),
		Type:      "continue",
		Content:   "x",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), s); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
