package panel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/skyglobe/internal/adapters/panel"
	"github.com/samirrijal/skyglobe/internal/core/domain"
)

type mockPublisher struct {
	panels []*domain.PanelState
	err    error
}

func (m *mockPublisher) PublishSnapshot(ctx context.Context, snap *domain.TelemetrySnapshot) error {
	return nil
}

func (m *mockPublisher) PublishGeneration(ctx context.Context, gen *domain.Generation) error {
	return nil
}

func (m *mockPublisher) PublishPanel(ctx context.Context, state *domain.PanelState) error {
	m.panels = append(m.panels, state)
	return m.err
}

func TestPresenter_ShowAndHide(t *testing.T) {
	pub := &mockPublisher{}
	p := panel.NewPresenter(pub)

	p.Show(context.Background(), domain.PanelState{SessionID: "s1", Status: domain.PanelShowing, Message: "Bilbao, ES, EU", Token: 3})

	cur, ok := p.Current("s1")
	if !ok || cur.Message != "Bilbao, ES, EU" {
		t.Fatalf("current = %+v, %v", cur, ok)
	}
	if len(pub.panels) != 1 || pub.panels[0].Token != 3 {
		t.Errorf("published %+v", pub.panels)
	}

	p.Hide(context.Background(), "s1")
	if _, ok := p.Current("s1"); ok {
		t.Error("panel still shown after hide")
	}
	if len(pub.panels) != 2 || pub.panels[1].Status != domain.PanelIdle {
		t.Errorf("hide not published as idle: %+v", pub.panels)
	}
}

func TestPresenter_PublishFailureIsNotFatal(t *testing.T) {
	p := panel.NewPresenter(&mockPublisher{err: errors.New("nats down")})
	p.Show(context.Background(), domain.PanelState{SessionID: "s2", Status: domain.PanelShowing})

	if _, ok := p.Current("s2"); !ok {
		t.Error("state lost when publishing failed")
	}
}

func TestPresenter_NilPublisher(t *testing.T) {
	p := panel.NewPresenter(nil)
	p.Show(context.Background(), domain.PanelState{SessionID: "s3"})
	p.Hide(context.Background(), "s3")
}
