package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Health API",
        "description": "Medical plans, parent consent, nurse execution and supply tracking for school health rooms.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Medical Plans", "description": "Vaccination and health checkup campaigns"},
        {"name": "Consents", "description": "Parent consent decisions"},
        {"name": "Outcomes", "description": "Nurse-recorded results"},
        {"name": "Medical Events", "description": "Incidents handled by nurses"},
        {"name": "Inventory", "description": "Supply usage and stock alerts"},
        {"name": "Notifications", "description": "Parent inbox"}
    ],
    "paths": {
        "/medical-plans": {
            "post": {
                "tags": ["Medical Plans"],
                "summary": "Create a medical plan and request consent from parents of the target grade",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateMedicalPlanRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"},
                    "422": {"description": "Unsupported plan type"}
                }
            }
        },
        "/medical-plans/{id}": {
            "get": {
                "tags": ["Medical Plans"],
                "summary": "Get a medical plan",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Medical Plans"],
                "summary": "Update a medical plan",
                "description": "Changing the target grade discards existing consents and requests new ones.",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UpdateMedicalPlanRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Medical Plans"],
                "summary": "Delete a medical plan with its consents and execution records",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/medical-plans/{id}/assignments": {
            "post": {
                "tags": ["Medical Plans"],
                "summary": "Assign a nurse to consented students",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/AssignNurseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "A student lacks an approved consent or the nurse is inactive"}
                }
            }
        },
        "/consents/pending": {
            "get": {"tags": ["Consents"], "summary": "List consents awaiting the parent's decision", "responses": {"200": {"description": "OK"}}}
        },
        "/consents/history": {
            "get": {"tags": ["Consents"], "summary": "List consents the parent already answered", "responses": {"200": {"description": "OK"}}}
        },
        "/consents/{id}/respond": {
            "post": {
                "tags": ["Consents"],
                "summary": "Approve or reject a consent",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RespondConsentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Consent belongs to another parent"},
                    "409": {"description": "Consent already answered"}
                }
            }
        },
        "/public/consents/respond": {
            "get": {
                "tags": ["Consents"],
                "summary": "Apply a consent decision from an email link",
                "security": [],
                "produces": ["text/html"],
                "parameters": [{"in": "query", "name": "token", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Confirmation page"}, "400": {"description": "Invalid or expired link"}, "409": {"description": "Already answered"}}
            }
        },
        "/health-checkups/{id}": {
            "put": {
                "tags": ["Outcomes"],
                "summary": "Record a health checkup result",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UpdateCheckupRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/vaccinations/{id}": {
            "put": {
                "tags": ["Outcomes"],
                "summary": "Record a vaccination result",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UpdateVaccinationRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found or assigned to another nurse"}}
            }
        },
        "/medical-events": {
            "post": {
                "tags": ["Medical Events"],
                "summary": "Record a medical event",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateMedicalEventRequest"}}],
                "responses": {"201": {"description": "Created"}, "422": {"description": "notify_parent and create_follow_up both set"}}
            }
        },
        "/supplies/usage": {
            "post": {
                "tags": ["Inventory"],
                "summary": "Consume supplies for a medical event",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RecordSupplyUsageRequest"}}],
                "responses": {"201": {"description": "Created"}, "404": {"description": "Item or event not found"}, "422": {"description": "Insufficient quantity"}}
            }
        },
        "/inventory/alerts": {
            "get": {"tags": ["Inventory"], "summary": "List current low-stock and expiring items", "responses": {"200": {"description": "OK"}}}
        },
        "/inventory/alerts/scan": {
            "post": {"tags": ["Inventory"], "summary": "Run the inventory alert scan now", "responses": {"200": {"description": "OK"}}}
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List the parent's notifications",
                "parameters": [
                    {"in": "query", "name": "unread", "type": "boolean"},
                    {"in": "query", "name": "limit", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/notifications/{id}/read": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Updated"}, "404": {"description": "Not found"}}
            }
        }
    },
    "definitions": {
        "CreateMedicalPlanRequest": {
            "type": "object",
            "required": ["plan_type", "name", "start_date", "end_date", "target_grade"],
            "properties": {
                "plan_type": {"type": "string", "enum": ["VACCINATION", "HEALTH_CHECKUP"]},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "target_grade": {"type": "string"}
            }
        },
        "UpdateMedicalPlanRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "target_grade": {"type": "string"},
                "status": {"type": "string", "enum": ["PLANNED", "IN_PROGRESS", "COMPLETED"]}
            }
        },
        "AssignNurseRequest": {
            "type": "object",
            "required": ["nurse_id", "student_ids"],
            "properties": {
                "nurse_id": {"type": "string"},
                "student_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "RespondConsentRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["APPROVED", "REJECTED"]},
                "notes": {"type": "string"}
            }
        },
        "UpdateCheckupRequest": {
            "type": "object",
            "properties": {
                "checkup_type": {"type": "string"},
                "result": {"type": "string"},
                "abnormal_findings": {"type": "string"},
                "recommendations": {"type": "string"},
                "follow_up_required": {"type": "boolean"}
            }
        },
        "UpdateVaccinationRequest": {
            "type": "object",
            "properties": {
                "vaccine_name": {"type": "string"},
                "batch_number": {"type": "string"},
                "dose_number": {"type": "integer"},
                "reaction": {"type": "string"},
                "notes": {"type": "string"},
                "follow_up_required": {"type": "boolean"}
            }
        },
        "CreateMedicalEventRequest": {
            "type": "object",
            "required": ["student_id", "event_type", "description"],
            "properties": {
                "student_id": {"type": "string"},
                "event_type": {"type": "string"},
                "description": {"type": "string"},
                "treatment": {"type": "string"},
                "severity": {"type": "string", "enum": ["LOW", "MEDIUM", "HIGH"]},
                "event_date": {"type": "string", "format": "date-time"},
                "notify_parent": {"type": "boolean"},
                "create_follow_up": {"type": "boolean"}
            }
        },
        "RecordSupplyUsageRequest": {
            "type": "object",
            "required": ["item_id", "quantity", "reason", "reference_event_id"],
            "properties": {
                "item_id": {"type": "string"},
                "quantity": {"type": "integer", "minimum": 1},
                "reason": {"type": "string"},
                "reference_event_id": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
