package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/foalwatch/internal/models"
	"gorm.io/gorm"
)

type herdFixture struct {
	app          *fiber.App
	database     *gorm.DB
	ownerCookie  string
	viewerCookie string
	mareID       uint
	stallionID   uint
}

func newHerdFixture(t *testing.T) herdFixture {
	t.Helper()

	app, database := newTestApp(t)
	owner := createTestUser(t, database, "owner@farm.example", "StrongPass1", models.RoleOwner, false)
	viewer := createTestViewer(t, database, "vet@farm.example", "StrongPass1", owner.ID)

	fixture := herdFixture{
		app:          app,
		database:     database,
		ownerCookie:  loginAndExtractAuthCookie(t, app, owner.Email, "StrongPass1"),
		viewerCookie: loginAndExtractAuthCookie(t, app, viewer.Email, "StrongPass1"),
	}

	mare := createHorseViaAPI(t, fixture, map[string]string{"name": "Bella", "sex": "mare", "breed": "Arabian", "birth_date": "2016-04-12"})
	stallion := createHorseViaAPI(t, fixture, map[string]string{"name": "Atlas", "sex": "stallion"})
	fixture.mareID = mare.ID
	fixture.stallionID = stallion.ID
	return fixture
}

func createHorseViaAPI(t *testing.T, fixture herdFixture, payload map[string]string) horseResponse {
	t.Helper()
	response := doJSON(t, fixture.app, http.MethodPost, "/api/horses", fixture.ownerCookie, payload)
	expectStatus(t, response, http.StatusCreated)
	return decodeJSON[horseResponse](t, response)
}

func createPregnancyViaAPI(t *testing.T, fixture herdFixture, payload map[string]any) pregnancyResponse {
	t.Helper()
	response := doJSON(t, fixture.app, http.MethodPost, "/api/pregnancies", fixture.ownerCookie, payload)
	expectStatus(t, response, http.StatusCreated)
	return decodeJSON[pregnancyResponse](t, response)
}

func TestHorseCRUD(t *testing.T) {
	fixture := newHerdFixture(t)

	response := doJSON(t, fixture.app, http.MethodGet, fmt.Sprintf("/api/horses/%d", fixture.mareID), fixture.ownerCookie, nil)
	expectStatus(t, response, http.StatusOK)
	mare := decodeJSON[horseResponse](t, response)
	if mare.Name != "Bella" || mare.BirthDate != "2016-04-12" || mare.AgeYears == nil || *mare.AgeYears != 8 {
		t.Fatalf("unexpected mare payload: %#v", mare)
	}
	if mare.PublicID == "" {
		t.Fatalf("expected public id")
	}

	response = doJSON(t, fixture.app, http.MethodPut, fmt.Sprintf("/api/horses/%d", fixture.mareID), fixture.ownerCookie, map[string]string{
		"name": "Bella Star", "sex": "mare", "color": "bay",
	})
	expectStatus(t, response, http.StatusOK)
	updated := decodeJSON[horseResponse](t, response)
	if updated.Name != "Bella Star" || updated.Color != "bay" || updated.BirthDate != "" {
		t.Fatalf("unexpected updated horse: %#v", updated)
	}

	response = doJSON(t, fixture.app, http.MethodGet, "/api/horses?sex=stallion", fixture.ownerCookie, nil)
	expectStatus(t, response, http.StatusOK)
	stallions := decodeJSON[[]horseResponse](t, response)
	if len(stallions) != 1 || stallions[0].ID != fixture.stallionID {
		t.Fatalf("unexpected stallion list: %#v", stallions)
	}

	response = doJSON(t, fixture.app, http.MethodPost, "/api/horses", fixture.ownerCookie, map[string]string{"name": "", "sex": "mare"})
	expectStatus(t, response, http.StatusBadRequest)
	if got := readAPIError(t, response); got != "invalid horse name" {
		t.Fatalf("expected invalid horse name, got %q", got)
	}

	response = doJSON(t, fixture.app, http.MethodDelete, fmt.Sprintf("/api/horses/%d", fixture.stallionID), fixture.ownerCookie, nil)
	expectStatus(t, response, http.StatusOK)
	response.Body.Close()

	response = doJSON(t, fixture.app, http.MethodGet, fmt.Sprintf("/api/horses/%d", fixture.stallionID), fixture.ownerCookie, nil)
	expectStatus(t, response, http.StatusNotFound)
	response.Body.Close()

	response = doJSON(t, fixture.app, http.MethodGet, "/api/horses/abc", fixture.ownerCookie, nil)
	expectStatus(t, response, http.StatusBadRequest)
	response.Body.Close()
}

func TestViewerReadsOwnerHerdButCannotWrite(t *testing.T) {
	fixture := newHerdFixture(t)

	response := doJSON(t, fixture.app, http.MethodGet, "/api/horses", fixture.viewerCookie, nil)
	expectStatus(t, response, http.StatusOK)
	horses := decodeJSON[[]horseResponse](t, response)
	if len(horses) != 2 {
		t.Fatalf("expected viewer to see the owner's 2 horses, got %d", len(horses))
	}

	response = doJSON(t, fixture.app, http.MethodPost, "/api/horses", fixture.viewerCookie, map[string]string{"name": "Intruder", "sex": "gelding"})
	expectStatus(t, response, http.StatusForbidden)
	if got := readAPIError(t, response); got != "owner access required" {
		t.Fatalf("expected owner access required, got %q", got)
	}

	response = doJSON(t, fixture.app, http.MethodGet, "/api/export/json", fixture.viewerCookie, nil)
	expectStatus(t, response, http.StatusForbidden)
	response.Body.Close()
}

func TestPregnancyLifecycle(t *testing.T) {
	fixture := newHerdFixture(t)

	created := createPregnancyViaAPI(t, fixture, map[string]any{
		"mare_id":         fixture.mareID,
		"stallion_id":     fixture.stallionID,
		"conception_date": "2024-01-01",
	})
	if created.Outcome != models.OutcomeOngoing || created.MareName != "Bella" || created.SireName != "Atlas" {
		t.Fatalf("unexpected created pregnancy: %#v", created)
	}
	if created.Status == nil || created.Status.ElapsedDays != 152 || created.Status.Stage != "mid" {
		t.Fatalf("expected status on day 152, got %#v", created.Status)
	}

	response := doJSON(t, fixture.app, http.MethodPost, "/api/pregnancies", fixture.ownerCookie, map[string]any{
		"mare_id":         fixture.mareID,
		"conception_date": "2024-02-01",
	})
	expectStatus(t, response, http.StatusConflict)
	if got := readAPIError(t, response); got != "mare already has an ongoing pregnancy" {
		t.Fatalf("unexpected conflict message: %q", got)
	}

	response = doJSON(t, fixture.app, http.MethodPost, "/api/pregnancies", fixture.ownerCookie, map[string]any{
		"mare_id":         fixture.stallionID,
		"conception_date": "2024-02-01",
	})
	expectStatus(t, response, http.StatusBadRequest)
	if got := readAPIError(t, response); got != "horse is not a mare" {
		t.Fatalf("unexpected validation message: %q", got)
	}

	response = doJSON(t, fixture.app, http.MethodPost, "/api/pregnancies", fixture.ownerCookie, map[string]any{
		"mare_id":         fixture.mareID,
		"conception_date": "01.01.2024",
	})
	expectStatus(t, response, http.StatusBadRequest)
	if got := readAPIError(t, response); got != "invalid date" {
		t.Fatalf("expected invalid date, got %q", got)
	}

	response = doJSON(t, fixture.app, http.MethodDelete, fmt.Sprintf("/api/horses/%d", fixture.mareID), fixture.ownerCookie, nil)
	expectStatus(t, response, http.StatusConflict)
	response.Body.Close()

	statusPath := fmt.Sprintf("/api/pregnancies/%d/status?on=2024-10-28", created.ID)
	response = doJSON(t, fixture.app, http.MethodGet, statusPath, fixture.viewerCookie, nil)
	expectStatus(t, response, http.StatusOK)
	statusPayload := decodeJSON[gestationResponse](t, response)
	if statusPayload.Status.ElapsedDays != 301 || statusPayload.Status.Stage != "late" {
		t.Fatalf("unexpected status on 2024-10-28: %#v", statusPayload.Status)
	}
	if len(statusPayload.UpcomingMilestones) != 1 || statusPayload.UpcomingMilestones[0].Key != "foaling_imminent" {
		t.Fatalf("unexpected upcoming milestones: %#v", statusPayload.UpcomingMilestones)
	}

	response = doJSON(t, fixture.app, http.MethodGet, fmt.Sprintf("/api/pregnancies/%d/status?on=tomorrow", created.ID), fixture.ownerCookie, nil)
	expectStatus(t, response, http.StatusBadRequest)
	response.Body.Close()

	response = doJSON(t, fixture.app, http.MethodPost, fmt.Sprintf("/api/pregnancies/%d/foaling", created.ID), fixture.ownerCookie, map[string]string{
		"foaling_date": "2024-05-30",
	})
	expectStatus(t, response, http.StatusOK)
	foaled := decodeJSON[pregnancyResponse](t, response)
	if foaled.Outcome != models.OutcomeFoaled || foaled.FoalingDate != "2024-05-30" {
		t.Fatalf("unexpected foaled pregnancy: %#v", foaled)
	}
	if foaled.Status == nil || foaled.Status.ElapsedDays != 150 {
		t.Fatalf("expected status frozen at foaling day 150, got %#v", foaled.Status)
	}

	response = doJSON(t, fixture.app, http.MethodGet, "/api/pregnancies?outcome=foaled", fixture.viewerCookie, nil)
	expectStatus(t, response, http.StatusOK)
	listed := decodeJSON[[]pregnancyResponse](t, response)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("unexpected foaled list: %#v", listed)
	}

	response = doJSON(t, fixture.app, http.MethodGet, "/api/pregnancies?from=2024-03-01&to=2024-01-01", fixture.ownerCookie, nil)
	expectStatus(t, response, http.StatusBadRequest)
	if got := readAPIError(t, response); got != "invalid range" {
		t.Fatalf("expected invalid range, got %q", got)
	}

	response = doJSON(t, fixture.app, http.MethodDelete, fmt.Sprintf("/api/pregnancies/%d", created.ID), fixture.ownerCookie, nil)
	expectStatus(t, response, http.StatusOK)
	response.Body.Close()

	response = doJSON(t, fixture.app, http.MethodGet, fmt.Sprintf("/api/pregnancies/%d", created.ID), fixture.ownerCookie, nil)
	expectStatus(t, response, http.StatusNotFound)
	response.Body.Close()
}

func TestOverviewSummarizesOngoingPregnancies(t *testing.T) {
	fixture := newHerdFixture(t)
	cora := createHorseViaAPI(t, fixture, map[string]string{"name": "Cora", "sex": "mare"})

	createPregnancyViaAPI(t, fixture, map[string]any{"mare_id": fixture.mareID, "conception_date": "2024-01-01"})
	createPregnancyViaAPI(t, fixture, map[string]any{"mare_id": cora.ID, "conception_date": "2023-07-10", "sire_name": "Neighbor's Star"})

	response := doJSON(t, fixture.app, http.MethodGet, "/api/overview?on=2024-06-01", fixture.viewerCookie, nil)
	expectStatus(t, response, http.StatusOK)
	overview := decodeJSON[overviewResponse](t, response)

	if overview.OngoingCount != 2 || overview.DueSoonCount != 1 || overview.OverdueCount != 0 {
		t.Fatalf("unexpected counters: %#v", overview)
	}
	if overview.StageCounts["mid"] != 1 || overview.StageCounts["pre_foaling"] != 1 || overview.StageCounts["early"] != 0 {
		t.Fatalf("unexpected stage counts: %#v", overview.StageCounts)
	}
	if len(overview.Pregnancies) != 2 || overview.Pregnancies[0].Pregnancy.MareName != "Cora" {
		t.Fatalf("expected Cora first by due date, got %#v", overview.Pregnancies)
	}
	first := overview.Pregnancies[0]
	if !first.DueSoon || first.NextMilestone != nil || first.DaysUntilNext != nil {
		t.Fatalf("unexpected first timeline: %#v", first)
	}
	last := overview.Pregnancies[1]
	if last.NextMilestone == nil || last.NextMilestone.Key != "foaling_prep" || last.DaysUntilNext == nil || *last.DaysUntilNext != 118 {
		t.Fatalf("unexpected second timeline: %#v", last)
	}

	response = doJSON(t, fixture.app, http.MethodGet, "/api/overview?on=2024-13-01", fixture.ownerCookie, nil)
	expectStatus(t, response, http.StatusBadRequest)
	response.Body.Close()
}

func TestExportCSVAndJSON(t *testing.T) {
	fixture := newHerdFixture(t)
	createPregnancyViaAPI(t, fixture, map[string]any{
		"mare_id":         fixture.mareID,
		"stallion_id":     fixture.stallionID,
		"conception_date": "2024-01-01",
		"notes":           "first cover, \"quiet\" mare",
	})

	response := doJSON(t, fixture.app, http.MethodGet, "/api/export/csv", fixture.ownerCookie, nil)
	expectStatus(t, response, http.StatusOK)
	if got := response.Header.Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Fatalf("unexpected content type: %q", got)
	}
	if got := response.Header.Get("Content-Disposition"); got != "attachment; filename=foalwatch-export-2024-06-01.csv" {
		t.Fatalf("unexpected content disposition: %q", got)
	}
	body, err := io.ReadAll(response.Body)
	response.Body.Close()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines: %q", len(lines), string(body))
	}
	if !strings.HasPrefix(lines[0], "Mare,Sire,Conception date,Outcome") {
		t.Fatalf("unexpected csv header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Bella,Atlas,2024-01-01,ongoing,,152,Mid,44.7,2024-12-06,188,No,") {
		t.Fatalf("unexpected csv row: %q", lines[1])
	}

	response = doJSON(t, fixture.app, http.MethodGet, "/api/export/json?from=2024-01-01&to=2024-01-31", fixture.ownerCookie, nil)
	expectStatus(t, response, http.StatusOK)
	payload := decodeJSON[map[string]any](t, response)
	entries, _ := payload["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("expected one exported entry, got %#v", payload["entries"])
	}

	response = doJSON(t, fixture.app, http.MethodGet, "/api/export/summary?from=bad", fixture.ownerCookie, nil)
	expectStatus(t, response, http.StatusBadRequest)
	if got := readAPIError(t, response); got != "invalid from date" {
		t.Fatalf("expected invalid from date, got %q", got)
	}
}
