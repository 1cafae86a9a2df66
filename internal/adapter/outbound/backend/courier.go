package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
)

// CourierClient serves the kurir area.
type CourierClient struct {
	*Client
}

// NewCourierClient creates the kurir area client.
func NewCourierClient(baseURL string, tokens TokenSource, opts ...Option) *CourierClient {
	return &CourierClient{New(AreaCourier, baseURL, tokens, opts...)}
}

type taskWire struct {
	ID             num   `json:"ID_TRANSAKSI_PEMBELIAN"`
	Status         text  `json:"STATUS_TRANSAKSI"`
	DeliveryMethod text  `json:"DELIVERY_METHOD"`
	CreatedAt      stamp `json:"created_at"`
}

// Profile returns courier id's profile.
func (k *CourierClient) Profile(ctx context.Context, id int) (market.StaffProfile, error) {
	return staffProfile(ctx, k.Client, id)
}

// Tasks returns the courier's open delivery tasks, newest first.
func (k *CourierClient) Tasks(ctx context.Context, id int) ([]market.DeliveryTask, error) {
	return k.tasks(ctx, pathf("/pegawai/%d/tugas", id), id)
}

// TaskHistory returns the courier's finished delivery tasks, newest first.
func (k *CourierClient) TaskHistory(ctx context.Context, id int) ([]market.DeliveryTask, error) {
	return k.tasks(ctx, pathf("/pegawai/%d/tugas-history", id), id)
}

func (k *CourierClient) tasks(ctx context.Context, path string, id int) ([]market.DeliveryTask, error) {
	if id <= 0 {
		return nil, market.Validationf("pegawai_id", "courier id is required")
	}
	r := request{method: http.MethodGet, path: path}
	var ws list[taskWire]
	if err := k.call(ctx, r, &ws); err != nil {
		return nil, err
	}
	tasks := make([]market.DeliveryTask, 0, len(ws))
	for _, w := range ws {
		tasks = append(tasks, market.DeliveryTask{
			ID:             int(w.ID),
			Status:         string(w.Status),
			DeliveryMethod: string(w.DeliveryMethod),
			CreatedAt:      w.CreatedAt.Time(),
		})
	}
	if err := check(k.Client, r, tasks...); err != nil {
		return nil, err
	}
	market.NewestFirst(tasks, func(t market.DeliveryTask) time.Time { return t.CreatedAt })
	return tasks, nil
}

// CompleteTask marks a delivery as done. The backend does not make this
// idempotent; callers confirm first and stop offering the action once the
// task is terminal (see service.DeliveryService). Never retried.
func (k *CourierClient) CompleteTask(ctx context.Context, taskID int) error {
	r := request{method: http.MethodPatch, path: pathf("/pegawai/tugas/%d/selesai", taskID)}
	return k.call(ctx, r, nil)
}
