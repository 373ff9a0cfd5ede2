package ingest

import (
	"strings"

	"github.com/Veraticus/punchlist/internal/model"
)

// SiteDetails extracts the building name from the first auditName and the
// address from the site location, area and region columns. Missing parts are
// left empty for the caller to fill in.
func SiteDetails(frame *Frame) model.SiteDetails {
	var details model.SiteDetails
	if frame.Len() == 0 {
		return details
	}

	details.BuildingName = parseAuditName(frame.Value(0, ColumnAuditName)).building

	parts := make([]string, 0, 3)
	for _, column := range []string{ColumnSiteLocation, ColumnSiteArea, ColumnSiteRegion} {
		if v := frame.FirstValue(column); v != "" {
			parts = append(parts, v)
		}
	}
	details.Address = strings.Join(parts, ", ")

	return details
}
