package export

import (
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/emigresto/telegram-resto-bot/internal/models"
	"github.com/emigresto/telegram-resto-bot/internal/resto"
)

const sheetName = "Reservations"

// GridWorkbook — classeur "Liste des réservations" de la semaine: une
// ligne par étudiant, une colonne par jour, ✔/✘ par période dans la
// cellule (même disposition que l'export de la grille web d'origine).
type GridWorkbook struct {
	File *excelize.File
}

func NewGridWorkbook(etudiants []models.Etudiant, jours []models.Jour, periodes []models.Periode, idx resto.Index) (*GridWorkbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []string{"ID", "Nom", "Prénom", "Matricule"}
	for _, j := range jours {
		header = append(header, j.NomJour)
	}
	for c, h := range header {
		cell := fmt.Sprintf("%s1", colName(c+1))
		if err := f.SetCellStr(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	end := colName(len(header)) + "1"
	_ = f.SetCellStyle(sheetName, "A1", end, bold)
	_ = f.AutoFilter(sheetName, "A1:"+end, nil)

	for r, e := range etudiants {
		row := []string{
			fmt.Sprintf("%d", e.ID), e.Nom, e.Prenom, e.Matricule,
		}
		for _, j := range jours {
			s := ""
			for _, p := range periodes {
				if idx.Has(e.ID, j.ID, p.ID) {
					s += "✔ "
				} else {
					s += "✘ "
				}
			}
			row = append(row, trimRight(s))
		}
		for c, val := range row {
			cell := fmt.Sprintf("%s%d", colName(c+1), r+2)
			if err := f.SetCellStr(sheetName, cell, val); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	// largeur heuristique: en-tête et premières lignes
	for c := 1; c <= len(header); c++ {
		w := float64(len(header[c-1])) * 1.1
		if w < 10 {
			w = 10
		}
		if w > 40 {
			w = 40
		}
		_ = f.SetColWidth(sheetName, colName(c), colName(c), w)
	}
	return &GridWorkbook{File: f}, nil
}

// SaveTemp — écrit le classeur dans un fichier temporaire au nom unique:
// deux exports concurrents (deux chats) n'écrasent jamais le fichier de
// l'autre. L'appelant supprime le fichier après envoi.
func (w *GridWorkbook) SaveTemp() (string, error) {
	f, err := os.CreateTemp("", fmt.Sprintf("reservations_%s_*.xlsx", time.Now().Format("2006-01-02")))
	if err != nil {
		return "", fmt.Errorf("fichier temporaire: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, w.File.SaveAs(path)
}

// helpers
func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func trimRight(s string) string {
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}
