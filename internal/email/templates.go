package email

import (
	"bytes"
	"html/template"

	"github.com/Domenick1991/airtech/internal/kafka"
)

var subjects = map[string]string{
	kafka.EventBookingCreated:   "Flight Ticket Notification",
	kafka.EventBookingUpdated:   "Flight Ticket Updated",
	kafka.EventBookingCancelled: "Flight Booking Cancelled",
	kafka.EventTravelReminder:   "Flight Reminder",
}

var templates = template.Must(template.New(kafka.EventBookingCreated).Parse(`<html><body>
<strong>Hello {{.FirstName}}, </strong>
<p>You have successfully booked a flight with Airtech. Find below your ticket details.</p>
{{template "ticket" .}}
</body></html>`))

func init() {
	template.Must(templates.New("ticket").Parse(`<p><b>Ticket Number: </b> {{.BookingID}}</p>
{{if .Origin}}<p><b>From: </b> {{.Origin}}</p>{{end}}
{{if .Destination}}<p><b>To: </b> {{.Destination}}</p>{{end}}
{{if .TravelDate}}<p><b>Travel Date: </b> {{.TravelDate}}</p>{{end}}
{{if .FlightName}}<p><b>Flight Name: </b> {{.FlightName}}</p>{{end}}
{{if .Seat}}<p><b>Seat: </b> {{.Seat}}, {{.ClassGroup}}</p>{{end}}`))

	template.Must(templates.New(kafka.EventBookingUpdated).Parse(`<html><body>
<strong>Hello {{.FirstName}}, </strong>
<p>Your booking with Airtech was updated. Find below your ticket details.</p>
{{template "ticket" .}}
</body></html>`))

	template.Must(templates.New(kafka.EventBookingCancelled).Parse(`<html><body>
<strong>Hello {{.FirstName}}, </strong>
<p>Your booking number {{.BookingID}} with Airtech was cancelled.</p>
</body></html>`))

	template.Must(templates.New(kafka.EventTravelReminder).Parse(`<html><body>
<strong>Hello {{.FirstName}}, </strong>
<p>This is a reminder of your flight with Airtech tomorrow.</p>
{{template "ticket" .}}
{{if .Gate}}<p><b>Gate: </b> {{.Gate}}</p>{{end}}
</body></html>`))
}

// Render builds the e-mail for event. It reports false for event types that
// have no template.
func Render(event kafka.BookingEvent) (Message, bool, error) {
	subject, ok := subjects[event.Type]
	if !ok {
		return Message{}, false, nil
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, event.Type, event); err != nil {
		return Message{}, false, err
	}
	return Message{To: event.Email, Subject: subject, HTMLBody: body.String()}, true, nil
}
