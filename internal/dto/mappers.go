package dto

import (
	"time"

	"sourcing-system/internal/entities"

	"github.com/aarondl/null/v8"
)

const dateLayout = "2006-01-02"

func nullStringPtr(s null.String) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullTimePtr(t null.Time) *string {
	if !t.Valid {
		return nil
	}
	v := t.Time.Format(time.RFC3339)
	return &v
}

func FromServiceRequest(req *entities.ServiceRequest) ServiceRequestResponseDTO {
	return ServiceRequestResponseDTO{
		ID:              req.ID,
		Title:           req.Title,
		RequestType:     req.RequestType,
		Status:          string(req.Status),
		RequesterID:     req.RequesterID,
		ProjectRef:      nullStringPtr(req.ProjectRef),
		ContractRef:     nullStringPtr(req.ContractRef),
		Domain:          req.Domain,
		RoleRequired:    req.RoleRequired,
		Technology:      req.Technology,
		ExperienceLevel: req.ExperienceLevel,
		ManDays:         req.ManDays,
		OnsiteDays:      req.OnsiteDays,
		Location:        req.Location,
		MustHave:        req.MustHave,
		NiceToHave:      req.NiceToHave,
		TaskDescription: req.TaskDescription,
		BiddingActive:   req.BiddingActive,
		SelectedOfferID: nullStringPtr(req.SelectedOfferID),
		RejectedReason:  nullStringPtr(req.RejectedReason),
		CreatedAt:       req.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       req.UpdatedAt.Format(time.RFC3339),
	}
}

func FromServiceRequests(list []entities.ServiceRequest, total uint64) ServiceRequestListResponseDTO {
	out := make([]ServiceRequestResponseDTO, 0, len(list))
	for i := range list {
		out = append(out, FromServiceRequest(&list[i]))
	}
	return ServiceRequestListResponseDTO{List: out, TotalCount: total}
}

func FromOffer(offer *entities.Offer) OfferResponseDTO {
	candidates := make([]CandidateResponseDTO, 0, len(offer.Candidates))
	for _, c := range offer.Candidates {
		candidates = append(candidates, CandidateResponseDTO{
			Role:                   c.Role,
			ExperienceLevel:        c.ExperienceLevel,
			TechnologyLevel:        c.TechnologyLevel,
			DailyRate:              c.DailyRate,
			TravelCostPerOnsiteDay: c.TravelCostPerOnsiteDay,
			Relationship:           string(c.Relationship),
			SubcontractorCompany:   nullStringPtr(c.SubcontractorCompany),
		})
	}
	return OfferResponseDTO{
		ID:            offer.ID,
		RequestID:     offer.RequestID,
		SupplierID:    offer.SupplierID,
		SupplierName:  offer.SupplierName,
		Currency:      offer.Currency,
		Candidates:    candidates,
		StartDate:     offer.StartDate.Format(dateLayout),
		EndDate:       offer.EndDate.Format(dateLayout),
		OnsiteDays:    offer.OnsiteDays,
		Notes:         nullStringPtr(offer.Notes),
		Preferred:     offer.Preferred,
		FinalApproved: offer.FinalApproved,
		TotalCost:     offer.TotalCost,
		CreatedAt:     offer.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     offer.UpdatedAt.Format(time.RFC3339),
	}
}

func FromOffers(list []entities.Offer) []OfferResponseDTO {
	out := make([]OfferResponseDTO, 0, len(list))
	for i := range list {
		out = append(out, FromOffer(&list[i]))
	}
	return out
}

func FromFeedback(fb *entities.Feedback) *FeedbackResponseDTO {
	if fb == nil {
		return nil
	}
	res := &FeedbackResponseDTO{
		Overall:       fb.Overall,
		Quality:       fb.Quality,
		Communication: fb.Communication,
		Value:         fb.Value,
		Comment:       fb.Comment,
		Anonymous:     fb.Anonymous,
		CreatedAt:     fb.CreatedAt.Format(time.RFC3339),
	}
	// У анонимного отзыва автор наружу не отдается.
	if !fb.Anonymous {
		author := fb.AuthorID
		res.AuthorID = &author
	}
	return res
}

func FromOrder(order *entities.Order) OrderResponseDTO {
	return OrderResponseDTO{
		ID:                   order.ID,
		SourceRequestID:      order.SourceRequestID,
		OfferID:              order.OfferID,
		SupplierID:           order.SupplierID,
		SupplierName:         order.SupplierName,
		SpecialistName:       order.SpecialistName,
		DailyRate:            order.DailyRate,
		TravelCost:           order.TravelCost,
		Relationship:         string(order.Relationship),
		SubcontractorCompany: nullStringPtr(order.SubcontractorCompany),
		Currency:             order.Currency,
		ContractValue:        order.ContractValue,
		ManDays:              order.ManDays,
		StartDate:            order.StartDate.Format(dateLayout),
		EndDate:              order.EndDate.Format(dateLayout),
		Status:               string(order.Status),
		DisplayState:         string(order.DisplayState()),
		ProviderConfirmed:    order.ProviderConfirmed,
		ApprovedBy:           nullStringPtr(order.ApprovedBy),
		ApprovedAt:           nullTimePtr(order.ApprovedAt),
		RejectedBy:           nullStringPtr(order.RejectedBy),
		RejectedAt:           nullTimePtr(order.RejectedAt),
		RejectionReason:      nullStringPtr(order.RejectionReason),
		PendingChangeID:      nullStringPtr(order.PendingChangeID),
		Feedback:             FromFeedback(order.Feedback),
		CreatedAt:            order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            order.UpdatedAt.Format(time.RFC3339),
	}
}

func FromOrders(list []entities.Order, total uint64) OrderListResponseDTO {
	out := make([]OrderResponseDTO, 0, len(list))
	for i := range list {
		out = append(out, FromOrder(&list[i]))
	}
	return OrderListResponseDTO{List: out, TotalCount: total}
}

func FromChangeRequest(change *entities.ChangeRequest) ChangeRequestResponseDTO {
	res := ChangeRequestResponseDTO{
		ID:                change.ID,
		OrderID:           change.OrderID,
		Type:              string(change.Type),
		ProposerID:        change.ProposerID,
		Reason:            change.Reason,
		Status:            string(change.Status),
		NewSpecialistName: nullStringPtr(change.NewSpecialistName),
		RejectionReason:   nullStringPtr(change.RejectionReason),
		ResolvedBy:        nullStringPtr(change.ResolvedBy),
		ResolvedAt:        nullTimePtr(change.ResolvedAt),
		CreatedAt:         change.CreatedAt.Format(time.RFC3339),
	}
	if change.NewEndDate.Valid {
		d := change.NewEndDate.Time.Format(dateLayout)
		res.NewEndDate = &d
	}
	if change.ExtraManDays.Valid {
		v := int(change.ExtraManDays.Int)
		res.ExtraManDays = &v
	}
	if change.NewContractValue.Valid {
		v := change.NewContractValue.Float64
		res.NewContractValue = &v
	}
	return res
}

func FromNotifications(list []entities.Notification) []NotificationResponseDTO {
	out := make([]NotificationResponseDTO, 0, len(list))
	for _, n := range list {
		out = append(out, NotificationResponseDTO{
			ID:         n.ID,
			EntityType: n.EntityType,
			EntityID:   n.EntityID,
			Message:    n.Message,
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func FromWorkflowHistory(list []entities.WorkflowHistory) []WorkflowHistoryResponseDTO {
	out := make([]WorkflowHistoryResponseDTO, 0, len(list))
	for _, h := range list {
		out = append(out, WorkflowHistoryResponseDTO{
			ID:         h.ID,
			EntityType: h.EntityType,
			EntityID:   h.EntityID,
			ActorID:    h.ActorID,
			EventType:  h.EventType,
			OldValue:   nullStringPtr(h.OldValue),
			NewValue:   nullStringPtr(h.NewValue),
			Comment:    nullStringPtr(h.Comment),
			CreatedAt:  h.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func FromChangeRequests(list []entities.ChangeRequest) []ChangeRequestResponseDTO {
	out := make([]ChangeRequestResponseDTO, 0, len(list))
	for i := range list {
		out = append(out, FromChangeRequest(&list[i]))
	}
	return out
}
