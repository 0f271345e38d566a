package service

import (
	"context"
	"log/slog"

	"inkwell/internal/domain/models"
	"inkwell/internal/repository/sqlite"
)

// TreeService derives the nested folder hierarchy from the flat folder
// table.
type TreeService struct {
	folderRepo *sqlite.FolderRepository
	logger     *slog.Logger
}

// NewTreeService creates a new tree service.
func NewTreeService(folderRepo *sqlite.FolderRepository, logger *slog.Logger) *TreeService {
	return &TreeService{
		folderRepo: folderRepo,
		logger:     logger,
	}
}

// BuildFolderTree returns the root folders with nested children and
// per-folder direct note counts. Ordering is name-ascending at every
// level. The build is index-based rather than recursive, so a parent
// chain that (incorrectly) contains a cycle cannot loop it: nodes on
// such a chain simply never reach a root and are left out.
func (s *TreeService) BuildFolderTree(ctx context.Context) ([]*models.FolderTreeNode, error) {
	folders, err := s.folderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.folderRepo.NoteCounts(ctx)
	if err != nil {
		return nil, err
	}

	// First pass: one node per folder. ListAll is name-ordered, and
	// appends below preserve that order at every level.
	nodes := make(map[string]*models.FolderTreeNode, len(folders))
	for _, folder := range folders {
		nodes[folder.ID] = &models.FolderTreeNode{
			ID:         folder.ID,
			Name:       folder.Name,
			ParentID:   folder.ParentID,
			CreatedAt:  folder.CreatedAt,
			UpdatedAt:  folder.UpdatedAt,
			NotesCount: counts[folder.ID],
			Children:   []*models.FolderTreeNode{},
		}
	}

	// Second pass: connect children to parents.
	roots := make([]*models.FolderTreeNode, 0)
	for _, folder := range folders {
		node := nodes[folder.ID]
		if folder.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*folder.ParentID]; ok && parent != node {
			parent.Children = append(parent.Children, node)
		}
	}

	s.logger.Debug("folder tree built",
		"folder_count", len(folders),
		"root_count", len(roots),
	)

	return roots, nil
}
