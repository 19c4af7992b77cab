package seed

import "thot/internal/core"

var (
	companyPrefixes = []string{"Grupo", "Comercial", "Distribuidora", "Industrias", "Servicios", "Importadora", "Almacenes", "Textil"}
	companySuffixes = []string{"Andina", "del Sur", "Pampeana", "Rioplatense", "Del Valle", "Patagonia", "Litoral", "Cordillera", "Atlántica", "Norteña"}

	streets = []string{"Av. Corrientes", "Av. Santa Fe", "San Martín", "Belgrano", "Rivadavia", "Mitre", "Sarmiento"}
	cities  = []string{"Buenos Aires", "Córdoba", "Rosario", "Mendoza", "La Plata", "Mar del Plata", "Salta"}

	// unitNames[0] is every customer's head office.
	unitNames = []string{
		"Oficina Principal", "Sucursal Centro", "Sucursal Norte", "Sucursal Sur",
		"Sucursal Este", "Sucursal Oeste", "Depósito Central", "Tienda Online",
		"Showroom", "Almacén", "Punto de Venta", "Sucursal Comercial",
		"Sucursal Industrial", "Sucursal Residencial",
	}

	observations = []string{
		"Pago adelantado", "Factura pendiente de recibir", "Ajuste por inflación",
		"Compra de urgencia", "Incluye IVA", "Pago en cuotas",
	}

	firstNames = []string{"Lucía", "Martín", "Sofía", "Juan", "Valentina", "Mateo", "Camila", "Santiago", "Julieta", "Tomás"}
	lastNames  = []string{"González", "Rodríguez", "Fernández", "López", "Martínez", "Pérez", "Gómez", "Díaz", "Romero", "Sosa"}
	channels   = []string{"Local", "Online", "WhatsApp", "Instagram", "Facebook"}
)

var expenseCategories = []struct {
	code  string
	name  string
	limit int64
}{
	{"ALQ", "Alquiler", 50000},
	{"SER", "Servicios", 15000},
	{"SUE", "Sueldos", 200000},
	{"IMP", "Impuestos", 25000},
	{"MAT", "Materiales", 30000},
	{"EQU", "Equipamiento", 100000},
	{"MAR", "Marketing", 20000},
	{"TRA", "Transporte", 15000},
	{"SEG", "Seguros", 12000},
	{"MAN", "Mantenimiento", 18000},
	{"LIC", "Licencias", 8000},
	{"CON", "Consultoría", 25000},
	{"VIA", "Viajes", 30000},
	{"OFI", "Oficina", 12000},
	{"TEC", "Tecnología", 40000},
	{"PRO", "Proveedores", 35000},
	{"PUB", "Publicidad", 15000},
	{"LEG", "Legales", 20000},
	{"FIN", "Financieros", 10000},
	{"OTR", "Otros", 5000},
}

var products = []struct {
	name  string
	price int64
	sku   string
}{
	{"Laptop HP", 150000, "LAP001"},
	{"Mouse Inalámbrico", 5000, "MOU001"},
	{"Teclado Mecánico", 15000, "TEC001"},
	{`Monitor 24"`, 80000, "MON001"},
	{"Auriculares", 12000, "AUR001"},
	{"Webcam HD", 8000, "WEB001"},
	{"Impresora Láser", 45000, "IMP001"},
	{"Tablet Samsung", 120000, "TAB001"},
	{"Cable HDMI", 2000, "CAB001"},
	{"Disco Externo 1TB", 25000, "DIS001"},
	{"Servicio de Mantenimiento", 15000, "SER001"},
	{"Consultoría IT", 50000, "CON001"},
	{"Software Licencia", 30000, "SOF001"},
	{"Reparación PC", 8000, "REP001"},
	{"Instalación Red", 25000, "INS001"},
}

// Weighted choices: repeated entries are more likely.
var (
	orderStatuses = []core.OrderStatus{
		core.OrderCompleted, core.OrderCompleted, core.OrderCompleted,
		core.OrderProcessing, core.OrderPending, core.OrderOpen, core.OrderCancelled,
	}
	paymentStatuses = []core.PaymentStatus{
		core.PaymentPaid, core.PaymentPaid, core.PaymentPaid,
		core.PaymentPending, core.PaymentPartiallyPaid, core.PaymentFailed,
	}
	shippingStatuses = []core.ShippingStatus{
		core.ShippingDelivered, core.ShippingShipped, core.ShippingNotRequired, core.ShippingPackaged,
	}
	shippingMethods = []core.ShippingMethod{
		core.ShipDelivery, core.ShipPickup, core.ShipStandard, core.ShipNotRequired,
	}
	paymentMethods = []core.PaymentMethod{
		core.MethodCash, core.MethodCreditCard, core.MethodDebitCard,
		core.MethodMercadoPago, core.MethodBankTransfer,
	}
)
