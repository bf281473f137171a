package services

import (
	"fmt"

	"github.com/alimgiray/codenexus/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	profileSheet      = "Profile"
	repositoriesSheet = "Repositories"
)

// ExportService renders lookups as spreadsheets
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// RepositoriesWorkbook builds a workbook with a profile sheet and a
// repositories sheet. Repositories keep the order they were listed in.
func (s *ExportService) RepositoriesWorkbook(profile models.UserProfile, repos []models.RepositorySummary) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", profileSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	profileRows := [][]interface{}{
		{"Username", profile.Login},
		{"Name", profile.DisplayName},
		{"Public Repositories", profile.PublicRepoCount},
		{"Followers", profile.FollowerCount},
		{"Following", profile.FollowingCount},
	}
	for i, row := range profileRows {
		if err := setRow(f, profileSheet, i+1, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if _, err := f.NewSheet(repositoriesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := setRow(f, repositoriesSheet, 1, []interface{}{"ID", "Name", "URL", "Private"}); err != nil {
		f.Close()
		return nil, err
	}
	for i, repo := range repos {
		row := []interface{}{repo.ID, repo.Name, repo.HTMLURL, repo.IsPrivate}
		if err := setRow(f, repositoriesSheet, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}
