package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nexconsult/docsync/internal/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pdf(name string) UploadedFile {
	return UploadedFile{Name: name, SizeBytes: 2048, MimeType: "application/pdf", Content: []byte("%PDF-1.4")}
}

func newCessao(t *testing.T, opts ...Option) *Wizard {
	t.Helper()
	tpl, err := templates.MustLookup(templates.CessaoCredito)
	require.NoError(t, err)
	return New("wiz-1", tpl, opts...)
}

func TestThreeSlotScenario(t *testing.T) {
	w := newCessao(t)

	require.NoError(t, w.DropFile(pdf("proposta.pdf")))
	require.NoError(t, w.Next())
	assert.Equal(t, 1, w.Snapshot().CurrentStepIndex)

	assert.ErrorIs(t, w.Next(), ErrStepIncomplete)
	assert.Equal(t, 1, w.Snapshot().CurrentStepIndex)

	require.NoError(t, w.DropFile(pdf("cnh.pdf")))
	require.NoError(t, w.Next())
	require.NoError(t, w.DropFile(pdf("endereco.pdf")))

	calls := 0
	var got Submission
	err := w.Finish(context.Background(), func(_ context.Context, sub Submission) error {
		calls++
		got = sub
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, templates.CessaoCredito, got.TemplateID)
	assert.Equal(t, "proposta.pdf", got.FilesBySlotID["proposta_pdf"].Name)
	assert.Equal(t, "cnh.pdf", got.FilesBySlotID["cnh_terceiro"].Name)
	assert.Equal(t, "endereco.pdf", got.FilesBySlotID["comprovante_endereco"].Name)

	state := w.Snapshot()
	assert.Equal(t, PhaseSubmitted, state.Phase)
	assert.False(t, state.IsSubmitting)
	assert.Equal(t, 100, state.Progress)
}

func TestFinishRequiresAllSlots(t *testing.T) {
	w := newCessao(t)
	require.NoError(t, w.DropFile(pdf("proposta.pdf")))

	called := false
	err := w.Finish(context.Background(), func(context.Context, Submission) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.False(t, called)
}

func TestDropFileReplacesAndRejects(t *testing.T) {
	w := newCessao(t)

	require.NoError(t, w.DropFile(pdf("a.pdf")))
	require.NoError(t, w.DropFile(pdf("b.pdf")))
	assert.Equal(t, "b.pdf", w.Snapshot().FilesBySlotID["proposta_pdf"].Name)

	big := pdf("big.pdf")
	big.SizeBytes = DefaultMaxFileSize + 1
	assert.ErrorIs(t, w.DropFile(big), ErrFileTooLarge)

	doc := UploadedFile{Name: "contrato.docx", SizeBytes: 10, MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
	assert.ErrorIs(t, w.DropFile(doc), ErrInvalidFileType)

	assert.Equal(t, "b.pdf", w.Snapshot().FilesBySlotID["proposta_pdf"].Name)
}

func TestRemoveFile(t *testing.T) {
	w := newCessao(t)
	require.NoError(t, w.DropFile(pdf("a.pdf")))
	require.NoError(t, w.RemoveFile())
	assert.Empty(t, w.Snapshot().FilesBySlotID)
	assert.ErrorIs(t, w.Next(), ErrStepIncomplete)
}

func TestPreviousOnFirstStepCancels(t *testing.T) {
	cancelled := 0
	w := newCessao(t, WithCancelHook(func() { cancelled++ }))

	require.NoError(t, w.Previous())
	assert.Equal(t, PhaseCancelled, w.Snapshot().Phase)
	assert.Equal(t, 1, cancelled)

	assert.ErrorIs(t, w.Cancel(), ErrClosed)
	assert.ErrorIs(t, w.DropFile(pdf("a.pdf")), ErrClosed)
	assert.Equal(t, 1, cancelled)
}

func TestPreviousGoesBack(t *testing.T) {
	w := newCessao(t)
	require.NoError(t, w.DropFile(pdf("a.pdf")))
	require.NoError(t, w.Next())
	require.NoError(t, w.Previous())
	assert.Equal(t, 0, w.Snapshot().CurrentStepIndex)
	assert.Equal(t, PhaseActive, w.Snapshot().Phase)
}

func TestNextOnLastStepIsNoop(t *testing.T) {
	tpl, _ := templates.Lookup(templates.ResponsabilidadeVeiculo)
	w := New("single", tpl)
	require.NoError(t, w.DropFile(pdf("a.pdf")))
	require.NoError(t, w.Next())
	assert.Equal(t, 0, w.Snapshot().CurrentStepIndex)
}

func TestFinishBlocksReentryAndResetsOnFailure(t *testing.T) {
	w := newCessao(t)
	require.NoError(t, w.Fill(map[string]UploadedFile{
		"proposta_pdf":         pdf("a.pdf"),
		"cnh_terceiro":         pdf("b.pdf"),
		"comprovante_endereco": pdf("c.pdf"),
	}))

	entered := make(chan struct{})
	release := make(chan struct{})
	boom := errors.New("backend down")

	var wg sync.WaitGroup
	wg.Add(1)
	var finishErr error
	go func() {
		defer wg.Done()
		finishErr = w.Finish(context.Background(), func(context.Context, Submission) error {
			close(entered)
			<-release
			return boom
		})
	}()

	<-entered
	assert.True(t, w.Snapshot().IsSubmitting)
	assert.ErrorIs(t, w.Next(), ErrBusy)
	assert.ErrorIs(t, w.Previous(), ErrBusy)
	assert.ErrorIs(t, w.Finish(context.Background(), func(context.Context, Submission) error { return nil }), ErrBusy)

	close(release)
	wg.Wait()

	assert.ErrorIs(t, finishErr, boom)
	state := w.Snapshot()
	assert.False(t, state.IsSubmitting)
	assert.Equal(t, PhaseActive, state.Phase)
}

func TestCancelDuringSubmissionIsRejected(t *testing.T) {
	hookRuns := 0
	w := newCessao(t, WithCancelHook(func() { hookRuns++ }))
	require.NoError(t, w.Fill(map[string]UploadedFile{
		"proposta_pdf":         pdf("a.pdf"),
		"cnh_terceiro":         pdf("b.pdf"),
		"comprovante_endereco": pdf("c.pdf"),
	}))

	var cancelErr error
	err := w.Finish(context.Background(), func(context.Context, Submission) error {
		cancelErr = w.Cancel()
		return nil
	})
	require.NoError(t, err)

	assert.ErrorIs(t, cancelErr, ErrBusy)
	assert.Equal(t, PhaseSubmitted, w.Snapshot().Phase)
	assert.Equal(t, 0, hookRuns)
	assert.ErrorIs(t, w.Cancel(), ErrClosed)
}

func TestProgressAndSteps(t *testing.T) {
	w := newCessao(t)
	assert.Equal(t, 0, w.Progress())

	require.NoError(t, w.DropFile(pdf("a.pdf")))
	assert.Equal(t, 33, w.Progress())

	require.NoError(t, w.Next())
	steps := w.Snapshot().Steps
	require.Len(t, steps, 3)
	assert.Equal(t, StepCompleted, steps[0].Status)
	assert.Equal(t, StepActive, steps[1].Status)
	assert.Equal(t, StepPending, steps[2].Status)

	require.NoError(t, w.DropFile(pdf("b.pdf")))
	assert.Equal(t, 67, w.Progress())
	assert.Equal(t, StepCompleted, w.Snapshot().Steps[1].Status)
}

func TestFillRejectsUnknownSlot(t *testing.T) {
	w := newCessao(t)
	err := w.Fill(map[string]UploadedFile{"comprovante_pagamento": pdf("a.pdf")})
	assert.ErrorIs(t, err, ErrUnknownSlot)
}
