package export

import (
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/sekretariat/internal/attendance"
	"github.com/Spok95/sekretariat/internal/models"
)

const (
	SheetAttendance = "Presensi"
	SheetTally      = "Rekap"
)

// AttendanceWorkbook renders the reconciled rows of a session and its tally.
func AttendanceWorkbook(s models.Session, rows []attendance.Row, tally attendance.Tally, loc *time.Location) (*excelize.File, error) {
	if loc == nil {
		loc = time.UTC
	}
	data := make([][]any, 0, len(rows))
	for i, r := range rows {
		recorded := "-"
		if r.RecordedAt != nil {
			recorded = r.RecordedAt.In(loc).Format("02.01.2006 15:04")
		}
		note := ""
		if r.Note != nil {
			note = *r.Note
		}
		override := ""
		if r.Override != nil {
			override = r.Override.Reason
		}
		assigned := "Ya"
		if !r.Assigned {
			assigned = "Tidak"
		}
		data = append(data, []any{
			i + 1, r.Participant.Name, r.Participant.Email, string(r.Participant.Role), r.Participant.OrgUnit,
			assigned, r.Status.Label(), recorded, note, override,
		})
	}

	summary := make([][]any, 0, len(models.AttendanceStatuses)+1)
	for _, st := range models.AttendanceStatuses {
		summary = append(summary, []any{st.Label(), tally[st]})
	}
	summary = append(summary, []any{"Total", tally.Total()})

	f, err := NewWorkbook([]SheetSpec{
		{
			Title:  SheetAttendance,
			Header: []string{"No", "Nama", "Email", "Peran", "Bidang", "Diundang", "Status", "Waktu Presensi", "Catatan", "Koreksi Admin"},
			Rows:   data,
		},
		{
			Title:  SheetTally,
			Header: []string{"Status", "Jumlah"},
			Rows:   summary,
		},
	})
	if err != nil {
		return nil, err
	}
	_ = f.SetDocProps(&excelize.DocProperties{
		Title:   s.Name,
		Subject: "Presensi " + s.StartAt.In(loc).Format("02.01.2006"),
	})
	return f, nil
}
