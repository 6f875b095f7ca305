package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/importer"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
)

const importCSV = `fecha;tipo;monto;descripcion;categoria
2024-01-01;ingreso;100;Venta mostrador;Ventas
2024-01-02;gasto;30;Pago de luz;Servicios públicos
2024-01-03;gasto;x;Monto ilegible;Alquiler
`

func TestService_Import(t *testing.T) {
	type testCase struct {
		name         string
		setupMock    func(m *importer.MockCreator)
		wantErr      error
		wantImported []string
		wantRejected []int
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *importer.MockCreator) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) (string, error) {
						assert.Equal(t, "biz-1", tx.BusinessID)
						assert.True(t, tx.Active)
						return "id-" + tx.Category, nil
					}).Times(2)
			},
			wantImported: []string{"id-Ventas", "id-Servicios públicos"},
			wantRejected: []int{4},
		},
		{
			name: "StoreFailureRejectsRow",
			setupMock: func(m *importer.MockCreator) {
				gomock.InOrder(
					m.EXPECT().Create(gomock.Any(), gomock.Any()).Return("", errors.New("write failed")),
					m.EXPECT().Create(gomock.Any(), gomock.Any()).Return("tx-2", nil),
				)
			},
			wantImported: []string{"tx-2"},
			wantRejected: []int{4, 2},
		},
		{
			name: "NoSessionAborts",
			setupMock: func(m *importer.MockCreator) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).Return("", identity.ErrNoSession)
			},
			wantErr: identity.ErrNoSession,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			creator := importer.NewMockCreator(ctrl)
			tt.setupMock(creator)

			svc := importer.NewService(creator, time.UTC)

			report, err := svc.Import(context.Background(), "biz-1", strings.NewReader(importCSV))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantImported, report.Imported)

			lines := make([]int, len(report.Rejected))
			for i, r := range report.Rejected {
				lines[i] = r.Line
			}

			assert.Equal(t, tt.wantRejected, lines)
		})
	}
}

func TestService_ImportNoHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := importer.NewService(importer.NewMockCreator(ctrl), time.UTC)

	_, err := svc.Import(context.Background(), "biz-1", strings.NewReader("hola;mundo\n"))
	assert.ErrorIs(t, err, importer.ErrNoHeader)
}

func TestService_ImportCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := importer.NewService(importer.NewMockCreator(ctrl), time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Import(ctx, "biz-1", strings.NewReader(importCSV))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_ImportCanceledMidway(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	creator := importer.NewMockCreator(ctrl)
	creator.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *transaction.Transaction) (string, error) {
			cancel()
			return "tx-1", nil
		})

	svc := importer.NewService(creator, time.UTC)

	report, err := svc.Import(ctx, "biz-1", strings.NewReader(importCSV))
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report, "rows stored before the cancel are reported")
	assert.Equal(t, []string{"tx-1"}, report.Imported)
}
