package matching_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/barkeep/internal/matching"
	"github.com/MrJamesThe3rd/barkeep/internal/validate"
)

func TestService_Suggest(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)
	repo.EXPECT().FindDepartment(gomock.Any(), "Ice bags x10").Return("Bar", nil)

	svc := matching.NewService(repo)

	got, err := svc.Suggest(context.Background(), " Ice bags x10 ")
	require.NoError(t, err)
	assert.Equal(t, "Bar", got)

	got, err = svc.Suggest(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestService_Learn(t *testing.T) {
	type testCase struct {
		name       string
		pattern    string
		department string
		setupMock  func(repo *matching.MockRepository)
		wantErr    error
	}

	tests := []testCase{
		{
			name:       "Success",
			pattern:    " ice ",
			department: "Bar",
			setupMock: func(repo *matching.MockRepository) {
				repo.EXPECT().CreateMapping(gomock.Any(), "ice", "Bar").Return(nil)
			},
		},
		{
			name:       "MissingDepartment",
			pattern:    "ice",
			department: "",
			wantErr:    validate.ErrInvalidInput,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := matching.NewMockRepository(ctrl)

			if tc.setupMock != nil {
				tc.setupMock(repo)
			}

			err := matching.NewService(repo).Learn(context.Background(), tc.pattern, tc.department)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}
