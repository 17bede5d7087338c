package chat

import (
	"fmt"
	"strings"
	"time"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/pkg/api"
)

// ComposeInput is everything one turn's instruction block is built from.
// ComposePrompt is a pure function of this value, which keeps the composer
// independently testable.
type ComposeInput struct {
	Snapshot domain.Snapshot
	Aliases  *AliasTable
	Memory   string
	Facts    []StateChangeFact
	Receipts []api.Receipt
	Now      time.Time
}

// ComposePrompt assembles the system instruction for one orchestration turn:
// persona, aliased financial snapshot, temporal context, conversation memory,
// state-change facts, receipt data, the action catalogue, worked examples,
// and the strict two-field response contract.
func ComposePrompt(in ComposeInput) string {
	var b strings.Builder

	b.WriteString("Eres el asistente financiero de un pequeño negocio. Hablas siempre en español, ")
	b.WriteString("con un tono cercano y profesional. Ayudas al usuario a registrar y consultar sus ")
	b.WriteString("trabajos (contratos) y gastos.\n\n")

	writeSnapshotSection(&b, in.Snapshot, in.Aliases)
	writeCategoriesSection(&b, in.Snapshot.Categories)
	writeTemporalSection(&b, in.Now)

	if strings.TrimSpace(in.Memory) != "" {
		b.WriteString("## Memoria de la conversación\n")
		b.WriteString(strings.TrimSpace(in.Memory))
		b.WriteString("\n\n")
	}

	writeFactsSection(&b, in.Facts)
	writeReceiptsSection(&b, in.Receipts)
	writeActionCatalogue(&b)
	writeExamples(&b)
	writeContract(&b)

	return b.String()
}

func writeSnapshotSection(b *strings.Builder, snap domain.Snapshot, aliases *AliasTable) {
	tokenFor := func(id string) string {
		if aliases == nil {
			return ""
		}
		for _, e := range aliases.Entries() {
			if e.EntityID == id {
				return e.Token
			}
		}
		return ""
	}

	b.WriteString("## Datos actuales\n")
	if len(snap.Jobs) == 0 {
		b.WriteString("El usuario no tiene trabajos registrados.\n")
	} else {
		b.WriteString("Trabajos:\n")
		for _, j := range snap.Jobs {
			fmt.Fprintf(b, "- %s: estado=%s, ingreso=%.2f, gastos=%.2f, ganancia=%.2f",
				tokenFor(j.ID), j.Status, j.Revenue, j.Expenses, j.Profit)
			if j.Client != "" {
				fmt.Fprintf(b, ", cliente=%s", j.Client)
			}
			b.WriteString("\n")
		}
	}
	if len(snap.Expenses) == 0 {
		b.WriteString("El usuario no tiene gastos registrados.\n")
	} else {
		b.WriteString("Gastos:\n")
		for _, e := range snap.Expenses {
			fmt.Fprintf(b, "- %s: monto=%.2f, categoría=%s", tokenFor(e.ID), e.Amount, e.Category)
			if e.JobID != "" {
				if jt := tokenFor(e.JobID); jt != "" {
					fmt.Fprintf(b, ", trabajo=%s", jt)
				}
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
}

func writeCategoriesSection(b *strings.Builder, categories []*domain.Category) {
	if len(categories) == 0 {
		return
	}
	b.WriteString("## Categorías disponibles\n")
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	b.WriteString(strings.Join(names, ", "))
	b.WriteString("\n\n")
}

func writeTemporalSection(b *strings.Builder, now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	year, week := now.ISOWeek()
	weekStart := startOfISOWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 6)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	b.WriteString("## Contexto temporal\n")
	fmt.Fprintf(b, "Hoy es %s.\n", now.Format("2006-01-02"))
	fmt.Fprintf(b, "Semana ISO %d-%02d: del %s al %s.\n",
		year, week, weekStart.Format("2006-01-02"), weekEnd.Format("2006-01-02"))
	fmt.Fprintf(b, "Mes actual: del %s al %s.\n\n",
		monthStart.Format("2006-01-02"), monthEnd.Format("2006-01-02"))
}

func startOfISOWeek(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, 1-weekday)
}

func writeFactsSection(b *strings.Builder, facts []StateChangeFact) {
	if len(facts) == 0 {
		return
	}
	b.WriteString("## Cambios recientes\n")
	for _, f := range facts {
		entity := "trabajo"
		if f.Entity == EntityExpense {
			entity = "gasto"
		}
		switch f.Kind {
		case ChangeRecentlyDeleted:
			fmt.Fprintf(b, "- El %s \"%s\" fue eliminado y ya no existe.\n", entity, f.Name)
		case ChangeRecentlyCreated:
			fmt.Fprintf(b, "- El %s \"%s\" fue creado recientemente; cualquier referencia a ese nombre es al registro actual.\n",
				entity, f.Name)
		}
	}
	b.WriteString("\n")
}

func writeReceiptsSection(b *strings.Builder, receipts []api.Receipt) {
	if len(receipts) == 0 {
		return
	}
	b.WriteString("## Recibos adjuntos\n")
	b.WriteString("El usuario adjuntó recibos ya procesados. Usa estos datos tal cual para ")
	b.WriteString("registrar gastos, sin volver a preguntar por monto, proveedor ni fecha.\n")
	for i, r := range receipts {
		fmt.Fprintf(b, "Recibo %d: proveedor=%s, subtotal=%.2f, impuestos=%.2f, total=%.2f, fecha=%s, referencia=%s\n",
			i+1, r.Vendor, r.Subtotal, r.Tax, r.Total, r.Date, r.Path)
		for _, item := range r.Items {
			fmt.Fprintf(b, "  - %s: %.2f\n", item.Name, item.Amount)
		}
	}
	b.WriteString("\n")
}

func writeActionCatalogue(b *strings.Builder) {
	b.WriteString("## Acciones disponibles\n")
	b.WriteString("Cada acción es un objeto {\"action\": <nombre>, \"data\": {...}}. Nombres y parámetros:\n")
	b.WriteString(`- create_job: {"name", "revenue", "client"?, "address"?, "description"?, "startDate"?, "endDate"?}
- update_job: {"jobId" o "jobName", más los campos a cambiar}
- delete_job: {"jobId" o "jobName"}
- update_job_status: {"jobId" o "jobName", "status": "in_progress"|"completed"|"paid"}
- create_expense: {"name", "amount", "category"?, "jobId" o "jobName"?, "date"?, "vendor"?, "notes"?, "receiptRef"?}
- update_expense: {"expenseId" o "expenseName", más los campos a cambiar}
- delete_expense: {"expenseId" o "expenseName"}
- attach_expense: {"expenseId" o "expenseName", "jobId" o "jobName"}
- detach_expense: {"expenseId" o "expenseName"}
- create_category: {"name"}
- rename_category: {"categoryId" o "categoryName", "name"}
- delete_category: {"categoryId" o "categoryName"}
- create_notification: {"message", "type": "info"|"reminder"|"alert", "jobId"?}
- mark_notification_read: {"notificationId"}
- delete_notification: {"notificationId"}
- query: {} (solo responder con texto, sin mutación)
`)
	b.WriteString("\n")
}

func writeExamples(b *strings.Builder) {
	b.WriteString("## Ejemplos\n")
	b.WriteString("Usuario: \"Crea el trabajo Remodelación cocina por 5000\"\n")
	b.WriteString("Respuesta:\n")
	b.WriteString("{\"text\": \"¡Listo! Registré el trabajo Remodelación cocina con un ingreso de 5000.\", ")
	b.WriteString("\"actions\": [{\"action\": \"create_job\", \"data\": {\"name\": \"Remodelación cocina\", \"revenue\": 5000}}]}\n")
	b.WriteString("Usuario: \"¿Cuánto llevo gastado en JOB_01?\"\n")
	b.WriteString("Respuesta:\n")
	b.WriteString("{\"text\": \"En ese trabajo llevas gastados 1200 en total.\", ")
	b.WriteString("\"actions\": [{\"action\": \"query\", \"data\": {}}]}\n\n")
}

func writeContract(b *strings.Builder) {
	b.WriteString("## Formato de respuesta\n")
	b.WriteString("Responde SIEMPRE con un único objeto JSON de exactamente dos campos:\n")
	b.WriteString("{\"text\": <respuesta en español para el usuario>, \"actions\": [<lista de acciones, puede ser vacía>]}\n")
	b.WriteString("Reglas estrictas:\n")
	b.WriteString("- El campo \"text\" nunca debe contener los códigos internos JOB_nn ni EXP_nn; usa los nombres reales.\n")
	b.WriteString("- No incluyas texto fuera del objeto JSON.\n")
	b.WriteString("- Si el usuario solo pregunta, usa la acción query y responde en \"text\".\n")
	b.WriteString("- Nunca inventes identificadores; usa los códigos de los datos actuales en \"data\".\n")
}
