package application

import "github.com/wms-platform/wave-planning-service/internal/domain"

// ToWaveDTO maps a wave aggregate to its API representation.
func ToWaveDTO(wave *domain.Wave) WaveDTO {
	return WaveDTO{
		WaveID:            wave.WaveID,
		WaveNumber:        wave.WaveNumber,
		TenantID:          wave.TenantID,
		Strategy:          string(wave.Strategy),
		Status:            string(wave.Status),
		OperatorID:        wave.OperatorID,
		OrderIDs:          wave.OrderIDs,
		OrderCount:        wave.OrderCount,
		PickCount:         wave.PickCount,
		EstimatedMinutes:  wave.EstimatedMinutes,
		EstimatedDistance: wave.EstimatedDistance,
		CancelReason:      wave.CancelReason,
		CreatedAt:         wave.CreatedAt,
		UpdatedAt:         wave.UpdatedAt,
		StartedAt:         wave.StartedAt,
		CompletedAt:       wave.CompletedAt,
	}
}

// ToWaveDTOs maps a slice of waves.
func ToWaveDTOs(waves []*domain.Wave) []WaveDTO {
	dtos := make([]WaveDTO, 0, len(waves))
	for _, wave := range waves {
		dtos = append(dtos, ToWaveDTO(wave))
	}
	return dtos
}

// ToPickTaskDTO maps a pick task to its API representation.
func ToPickTaskDTO(task *domain.PickTask) PickTaskDTO {
	return PickTaskDTO{
		TaskID:         task.TaskID,
		WaveID:         task.WaveID,
		OrderIDs:       task.OrderIDs,
		SKU:            task.SKU,
		Quantity:       task.Quantity,
		QuantityPicked: task.QuantityPicked,
		LocationID:     task.LocationID,
		Zone:           task.Zone,
		Sequence:       task.Sequence,
		Status:         string(task.Status),
		AssignedTo:     task.AssignedTo,
		FailureReason:  task.FailureReason,
		CreatedAt:      task.CreatedAt,
		StartedAt:      task.StartedAt,
		CompletedAt:    task.CompletedAt,
	}
}

// ToPickTaskDTOs maps a slice of pick tasks.
func ToPickTaskDTOs(tasks []domain.PickTask) []PickTaskDTO {
	dtos := make([]PickTaskDTO, 0, len(tasks))
	for i := range tasks {
		dtos = append(dtos, ToPickTaskDTO(&tasks[i]))
	}
	return dtos
}
