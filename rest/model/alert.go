package model

import (
	dbmodel "github.com/benchwatch/benchwatch/model"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
)

// APIRegressionAlert describes a recorded benchmark regression.
type APIRegressionAlert struct {
	ID        *string                `json:"id"`
	Info      APIRegressionAlertInfo `json:"info"`
	Previous  float64                `json:"previous"`
	Current   float64                `json:"current"`
	Ratio     float64                `json:"ratio"`
	Unit      *string                `json:"unit,omitempty"`
	CreatedAt APITime                `json:"created_at"`
}

// APIRegressionAlertInfo describes the information unique to a single
// regression alert.
type APIRegressionAlertInfo struct {
	Project        *string `json:"project"`
	Suite          *string `json:"suite"`
	CommitID       *string `json:"commit_id"`
	PreviousCommit *string `json:"previous_commit"`
	BenchName      *string `json:"bench_name"`
}

// Import transforms a RegressionAlert object into an APIRegressionAlert
// object.
func (apiAlert *APIRegressionAlert) Import(i interface{}) error {
	switch a := i.(type) {
	case dbmodel.RegressionAlert:
		apiAlert.ID = utility.ToStringPtr(a.ID)
		apiAlert.Info = APIRegressionAlertInfo{
			Project:        utility.ToStringPtr(a.Info.Project),
			Suite:          utility.ToStringPtr(a.Info.Suite),
			CommitID:       utility.ToStringPtr(a.Info.CommitID),
			PreviousCommit: utility.ToStringPtr(a.Info.PreviousCommit),
			BenchName:      utility.ToStringPtr(a.Info.BenchName),
		}
		apiAlert.Previous = a.Previous
		apiAlert.Current = a.Current
		apiAlert.Ratio = a.Ratio
		apiAlert.Unit = utility.ToStringPtr(a.Unit)
		apiAlert.CreatedAt = NewTime(a.CreatedAt)
	default:
		return errors.New("incorrect type when converting RegressionAlert type")
	}
	return nil
}

// Export transforms an APIRegressionAlert into a RegressionAlert.
func (apiAlert *APIRegressionAlert) Export() (interface{}, error) {
	return dbmodel.RegressionAlert{
		ID: utility.FromStringPtr(apiAlert.ID),
		Info: dbmodel.RegressionAlertInfo{
			Project:        utility.FromStringPtr(apiAlert.Info.Project),
			Suite:          utility.FromStringPtr(apiAlert.Info.Suite),
			CommitID:       utility.FromStringPtr(apiAlert.Info.CommitID),
			PreviousCommit: utility.FromStringPtr(apiAlert.Info.PreviousCommit),
			BenchName:      utility.FromStringPtr(apiAlert.Info.BenchName),
		},
		Previous:  apiAlert.Previous,
		Current:   apiAlert.Current,
		Ratio:     apiAlert.Ratio,
		Unit:      utility.FromStringPtr(apiAlert.Unit),
		CreatedAt: apiAlert.CreatedAt.Time(),
	}, nil
}
