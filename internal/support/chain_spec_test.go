package support

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// handlerFunc is a terminal handler backed by a plain function.
type handlerFunc func(req Request) Outcome

func (f handlerFunc) Handle(req Request) Outcome { return f(req) }

func (f handlerFunc) SetNext(next Handler) Handler { return next }

var _ = Describe("DefaultChain", func() {
	DescribeTable("routes each type to exactly one handler",
		func(typ, wantHandler, wantMessage string) {
			out := DefaultChain().Handle(NewRequest(typ, "payload"))
			Expect(out.Handled).To(BeTrue())
			Expect(out.Handler).To(Equal(wantHandler))
			Expect(out.Message).To(Equal(wantMessage))
		},
		Entry("general", TypeGeneral, "GeneralSupportHandler", "GeneralSupportHandler: handling general request: payload"),
		Entry("technical", TypeTechnical, "TechnicalSupportHandler", "TechnicalSupportHandler: handling technical request: payload"),
		Entry("complaint", TypeComplaint, "ComplaintsHandler", "ComplaintsHandler: handling complaint: payload"),
		Entry("anything else escalates", "billing", "EscalationHandler", "Escalating request: payload"),
	)
})

var _ = Describe("Chain without a catch-all", func() {
	It("reports unmatched requests as unprocessed", func() {
		head, err := Build(NewGeneralHandler(), NewTechnicalHandler())
		Expect(err).NotTo(HaveOccurred())

		out := head.Handle(NewRequest("billing", "refund"))
		Expect(out.Handled).To(BeFalse())
		Expect(out.Handler).To(BeEmpty())
		Expect(out.Message).To(Equal(UnprocessedMessage))
	})

	It("treats an empty chain as unprocessed", func() {
		head, err := Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(head.Handle(NewRequest(TypeGeneral, "x"))).To(Equal(Unprocessed()))
	})
})

var _ = Describe("Link order", func() {
	It("lets the first matching handler win", func() {
		first := NewTypeHandler("first", TypeGeneral, "first: %s")
		second := NewTypeHandler("second", TypeGeneral, "second: %s")

		head, err := Build(first, second)
		Expect(err).NotTo(HaveOccurred())
		Expect(head.Handle(NewRequest(TypeGeneral, "x")).Handler).To(Equal("first"))
	})

	It("changes the winner when the links are reordered", func() {
		first := NewTypeHandler("first", TypeGeneral, "first: %s")
		second := NewTypeHandler("second", TypeGeneral, "second: %s")

		head, err := Build(second, first)
		Expect(err).NotTo(HaveOccurred())
		Expect(head.Handle(NewRequest(TypeGeneral, "x")).Handler).To(Equal("second"))
	})
})

var _ = Describe("Build", func() {
	It("rejects nil handlers", func() {
		_, err := Build(NewGeneralHandler(), nil)
		Expect(err).To(MatchError(ErrNilLink))
	})

	It("rejects a handler listed twice", func() {
		h := NewGeneralHandler()
		_, err := Build(h, NewTechnicalHandler(), h)
		Expect(err).To(MatchError(ErrCycle))
	})

	It("accepts func-typed handlers", func() {
		last := handlerFunc(func(req Request) Outcome {
			return Outcome{Handled: true, Handler: "func", Message: "func: " + req.Content()}
		})

		var head Handler
		var err error
		Expect(func() { head, err = Build(NewGeneralHandler(), last, last) }).NotTo(Panic())
		Expect(err).NotTo(HaveOccurred())
		Expect(head.Handle(NewRequest("billing", "refund")).Message).To(Equal("func: refund"))
	})

	It("leaves every handler untouched when the existing tail loops back", func() {
		a := NewGeneralHandler()
		b := NewTechnicalHandler()
		c := NewComplaintsHandler()
		a.SetNext(b)
		c.SetNext(a)

		_, err := Build(a, b, c)
		Expect(err).To(MatchError(ErrCycle))
		Expect(a.Next()).To(BeIdenticalTo(b))
		Expect(b.Next()).To(BeNil())
		Expect(c.Next()).To(BeIdenticalTo(a))
	})

	It("rejects relinking that would close a loop", func() {
		a, b := NewGeneralHandler(), NewTechnicalHandler()
		_, err := Build(a, b)
		Expect(err).NotTo(HaveOccurred())

		_, err = Build(b, a)
		Expect(err).To(MatchError(ErrCycle))
	})
})

var _ = Describe("SetNext", func() {
	It("returns its argument for fluent linking", func() {
		a, b := NewGeneralHandler(), NewTechnicalHandler()
		Expect(a.SetNext(b)).To(BeIdenticalTo(b))
		Expect(a.Next()).To(BeIdenticalTo(b))
	})

	It("panics when linking a handler to itself", func() {
		a := NewGeneralHandler()
		Expect(func() { a.SetNext(a) }).To(PanicWith(ErrCycle))
	})
})

var _ = Describe("Desk", func() {
	It("writes exactly one line per request", func() {
		var buf bytes.Buffer
		desk := NewDesk(DefaultChain(), &buf, discardLogger())

		desk.Submit(NewRequest(TypeTechnical, "router down"))
		Expect(buf.String()).To(Equal("TechnicalSupportHandler: handling technical request: router down\n"))
	})

	It("replays the sample requests", func() {
		var buf bytes.Buffer
		desk := NewDesk(DefaultChain(), &buf, discardLogger())

		outcomes := desk.RunSamples()
		Expect(outcomes).To(HaveLen(3))
		Expect(strings.Split(buf.String(), "\n")).To(Equal([]string{
			"Processing request 1:",
			"GeneralSupportHandler: handling general request: Information about new products",
			"",
			"Processing request 2:",
			"TechnicalSupportHandler: handling technical request: Internet connection problems",
			"",
			"Processing request 3:",
			"ComplaintsHandler: handling complaint: Unsatisfactory service",
			"",
			"",
		}))
	})
})
