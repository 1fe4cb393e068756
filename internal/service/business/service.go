// Package business holds the paid-plan side of the assistant: onboarding clients,
// their welcome messages, sales copy and income reporting.
package business

import (
	"fmt"
	"strings"

	"github.com/jmehdipour/wa-assistant/internal/model"
	"go.uber.org/zap"
)

// ClientStore is the subset of the directory store used for clients.
type ClientStore interface {
	AddClient(business, contact, phone string, plan model.Plan) (model.Client, error)
	ListClients() []model.Client
	CancelClient(id int) (model.Client, error)
}

type Service struct {
	clients      ClientStore
	businessName string
	supportPhone string
	log          *zap.Logger
}

func New(clients ClientStore, businessName, supportPhone string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{clients: clients, businessName: businessName, supportPhone: supportPhone, log: log}
}

// Onboard stores a new client on plan and returns it with its welcome message.
func (s *Service) Onboard(business, contact, phone string, plan model.Plan) (model.Client, string, error) {
	c, err := s.clients.AddClient(business, contact, phone, plan)
	if err != nil {
		return model.Client{}, "", err
	}
	return c, s.WelcomeMessage(c), nil
}

func (s *Service) Cancel(id int) (model.Client, error) {
	c, err := s.clients.CancelClient(id)
	if err != nil {
		return model.Client{}, err
	}
	s.log.Info("client cancelled", zap.Int("id", c.ID), zap.String("business", c.Business))
	return c, nil
}

func (s *Service) Clients() []model.Client { return s.clients.ListClients() }

// Client looks a client up by id.
func (s *Service) Client(id int) (model.Client, bool) {
	for _, c := range s.clients.ListClients() {
		if c.ID == id {
			return c, true
		}
	}
	return model.Client{}, false
}

// WelcomeMessage renders the activation message for c.
func (s *Service) WelcomeMessage(c model.Client) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s! 👋\n\n", c.Contact)
	fmt.Fprintf(&b, "Welcome to %s's WhatsApp Service!\n\n", s.businessName)
	fmt.Fprintf(&b, "✅ Your %s plan is activated\n", c.Plan)
	fmt.Fprintf(&b, "✅ Price: R%d/month\n", c.Price)
	b.WriteString("✅ Features included:\n")
	for _, f := range c.Plan.Details().Features {
		fmt.Fprintf(&b, "   • %s\n", f)
	}
	fmt.Fprintf(&b, "\n📞 Support: %s\n", s.supportPhone)
	b.WriteString("📅 Next billing: 30 days from now\n\n")
	b.WriteString("Thank you for choosing us!")
	return b.String()
}

// SalesPitch renders the outreach message for prospects.
func (s *Service) SalesPitch() string {
	from := model.Plans()[0].Price
	return fmt.Sprintf(`Hello! I'm from %s.

We help businesses like yours manage WhatsApp professionally:

✅ Auto-reply to customers 24/7
✅ Send bulk announcements
✅ Organize customer chats
✅ Affordable plans from R%d/month

Would you like a FREE demo?`, s.businessName, from)
}

// Report summarises the client list. Cancelled clients are listed but do not count
// towards income.
type Report struct {
	Clients       []model.Client `json:"clients"`
	Active        int            `json:"active"`
	MonthlyIncome int            `json:"monthly_income"`
}

func (s *Service) Report() Report {
	r := Report{Clients: s.clients.ListClients()}
	for _, c := range r.Clients {
		if c.Status == model.ClientActive {
			r.Active++
			r.MonthlyIncome += c.Price
		}
	}
	return r
}

// PlanLine is one row of an income projection.
type PlanLine struct {
	Plan     model.Plan `json:"plan"`
	Clients  int        `json:"clients"`
	Price    int        `json:"price"`
	Subtotal int        `json:"subtotal"`
}

type Projection struct {
	Lines   []PlanLine `json:"lines"`
	Monthly int        `json:"monthly"`
	Yearly  int        `json:"yearly"`
}

// ProjectIncome computes monthly and yearly income for the given client counts per plan.
// Negative counts are an error.
func ProjectIncome(counts map[model.Plan]int) (Projection, error) {
	var p Projection
	for _, d := range model.Plans() {
		n := counts[d.Name]
		if n < 0 {
			return Projection{}, fmt.Errorf("negative client count for %s plan: %d", d.Name, n)
		}
		line := PlanLine{Plan: d.Name, Clients: n, Price: d.Price, Subtotal: n * d.Price}
		p.Lines = append(p.Lines, line)
		p.Monthly += line.Subtotal
	}
	p.Yearly = p.Monthly * 12
	return p, nil
}
